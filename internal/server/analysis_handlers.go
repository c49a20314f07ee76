package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/edp1096/toy-schematic/internal/config"
	"github.com/edp1096/toy-schematic/pkg/analysis"
	"github.com/edp1096/toy-schematic/pkg/bode"
	"github.com/edp1096/toy-schematic/pkg/component"
	"github.com/edp1096/toy-schematic/pkg/netlist"
	"github.com/edp1096/toy-schematic/pkg/schematic"
	"github.com/edp1096/toy-schematic/pkg/store"
	"github.com/edp1096/toy-schematic/pkg/workspace"
)

const maxDeckBytes = 1 << 20

func (h *Handlers) resolve(c *gin.Context) (store.Summary, *schematic.Result, bool) {
	summary, snap, err := h.designs.Snapshot(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return store.Summary{}, nil, false
	}
	return summary, schematic.Resolve(snap), true
}

func (h *Handlers) Netlist(c *gin.Context) {
	summary, res, ok := h.resolve(c)
	if !ok {
		return
	}

	if strings.EqualFold(c.Query("format"), "spice") {
		var buf bytes.Buffer
		if err := netlist.Write(&buf, res.Netlist(summary.Name)); err != nil {
			h.fail(c, err)
			return
		}
		c.Data(http.StatusOK, "text/plain; charset=utf-8", buf.Bytes())
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handlers) Check(c *gin.Context) {
	_, res, ok := h.resolve(c)
	if !ok {
		return
	}
	issues := res.Issues
	if issues == nil {
		issues = []schematic.Issue{}
	}
	c.JSON(http.StatusOK, gin.H{"ok": len(issues) == 0, "issues": issues})
}

// Probe names a net directly or through a component port.
type Probe struct {
	Component string `json:"component" validate:"required_with=Port"`
	Port      string `json:"port" validate:"required_with=Component"`
	Net       string `json:"net"`
}

func (p Probe) empty() bool {
	return p.Net == "" && p.Component == ""
}

// parseProbe reads "component:port" or a bare net name.
func parseProbe(s string) Probe {
	if comp, port, ok := strings.Cut(s, ":"); ok {
		return Probe{Component: comp, Port: port}
	}
	return Probe{Net: s}
}

func resolveProbe(res *schematic.Result, p Probe) (string, error) {
	if p.Net != "" {
		for _, n := range res.Nets {
			if n.Name == p.Net {
				return n.Name, nil
			}
		}
		return "", fmt.Errorf("%w: net %s", analysis.ErrUnknownNode, p.Net)
	}
	ref := workspace.PortRef{Component: p.Component, Port: p.Port}
	net, ok := res.NetOf(ref)
	if !ok {
		return "", fmt.Errorf("%w: port %s", analysis.ErrUnknownNode, ref.Key())
	}
	return net, nil
}

// resolveInput accepts a source element name or the id of a placed source.
func resolveInput(entries []workspace.NetlistEntry, input string) string {
	for _, e := range entries {
		if e.ID != input {
			continue
		}
		if spec, ok := component.LookupType(e.Type); ok && spec.HasElement() {
			return schematic.ElementName(spec, e.PlacedItem)
		}
	}
	return input
}

type TransferRequest struct {
	Input     string `json:"input"`
	Output    Probe  `json:"output"`
	Reference *Probe `json:"reference"`
}

func (req TransferRequest) param(res *schematic.Result) (netlist.TFParam, error) {
	if req.Output.empty() {
		return netlist.TFParam{}, fmt.Errorf("%w: output probe is required", ErrBadRequest)
	}
	out, err := resolveProbe(res, req.Output)
	if err != nil {
		return netlist.TFParam{}, err
	}
	param := netlist.TFParam{Output: out, Input: resolveInput(res.Entries, req.Input)}
	if req.Reference != nil && !req.Reference.empty() {
		if param.Reference, err = resolveProbe(res, *req.Reference); err != nil {
			return netlist.TFParam{}, err
		}
		if param.Reference == schematic.GroundNet {
			param.Reference = ""
		}
	}
	return param, nil
}

type Root struct {
	Re float64 `json:"re"`
	Im float64 `json:"im"`
}

type TransferResponse struct {
	Input      string            `json:"input"`
	Output     string            `json:"output"`
	Reference  string            `json:"reference,omitempty"`
	Expression string            `json:"expression"`
	Num        []float64         `json:"num"`
	Den        []float64         `json:"den"`
	Zeros      []Root            `json:"zeros"`
	Poles      []Root            `json:"poles"`
	DCGain     *float64          `json:"dcGain"` // null when H(0) is not finite
	Issues     []schematic.Issue `json:"issues,omitempty"`
}

func roots(rs []complex128) []Root {
	out := make([]Root, len(rs))
	for i, r := range rs {
		out[i] = Root{Re: real(r), Im: imag(r)}
	}
	return out
}

func newTransferResponse(tf *analysis.TransferFunction, issues []schematic.Issue) TransferResponse {
	resp := TransferResponse{
		Input:      tf.Input,
		Output:     tf.Output,
		Reference:  tf.Reference,
		Expression: tf.String(),
		Num:        tf.H.Num,
		Den:        tf.H.Den,
		Zeros:      roots(tf.Zeros),
		Poles:      roots(tf.Poles),
		Issues:     issues,
	}
	if !math.IsInf(tf.DCGain, 0) && !math.IsNaN(tf.DCGain) {
		g := tf.DCGain
		resp.DCGain = &g
	}
	return resp
}

func (h *Handlers) transfer(data *netlist.NetlistData, param netlist.TFParam) (*analysis.TransferFunction, error) {
	tf, err := analysis.Transfer(data, param)
	h.metrics.observeAnalysis("tf", err)
	if err != nil && !errors.Is(err, analysis.ErrUnknownNode) {
		return nil, fmt.Errorf("%w: %w", ErrAnalysis, err)
	}
	return tf, err
}

func (h *Handlers) Transfer(c *gin.Context) {
	var req TransferRequest
	if !h.bind(c, &req) {
		return
	}
	summary, res, ok := h.resolve(c)
	if !ok {
		return
	}

	param, err := req.param(res)
	if err != nil {
		h.fail(c, err)
		return
	}
	tf, err := h.transfer(res.Netlist(summary.Name), param)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newTransferResponse(tf, res.Issues))
}

type ACRequest struct {
	Sweep  string  `json:"sweep" form:"sweep" validate:"omitempty,oneof=DEC OCT LIN"`
	Points int     `json:"points" form:"points" validate:"gte=0,lte=10000"`
	FStart float64 `json:"fstart" form:"fstart" validate:"gte=0"`
	FStop  float64 `json:"fstop" form:"fstop" validate:"gte=0"`
}

// sweep fills unset fields from the configured defaults.
func (req ACRequest) sweep(def config.AnalysisConfig) (netlist.ACParam, error) {
	p := netlist.ACParam{Sweep: def.Sweep, Points: def.Points, FStart: def.FStart, FStop: def.FStop}
	if req.Sweep != "" {
		p.Sweep = strings.ToUpper(req.Sweep)
	}
	if req.Points > 0 {
		p.Points = req.Points
	}
	if req.FStart > 0 {
		p.FStart = req.FStart
	}
	if req.FStop > 0 {
		p.FStop = req.FStop
	}
	if p.FStop < p.FStart {
		return p, fmt.Errorf("%w: fstop %g is below fstart %g", ErrBadRequest, p.FStop, p.FStart)
	}
	return p, nil
}

func (h *Handlers) AC(c *gin.Context) {
	var req ACRequest
	if c.Request.ContentLength != 0 && !h.bind(c, &req) {
		return
	}
	param, err := req.sweep(h.defaults)
	if err != nil {
		h.fail(c, err)
		return
	}
	summary, res, ok := h.resolve(c)
	if !ok {
		return
	}

	data := res.Netlist(summary.Name)
	data.ACParam = param
	data.Analyses = []netlist.AnalysisType{netlist.AnalysisAC}

	result, err := analysis.Run(data, netlist.AnalysisAC)
	h.metrics.observeAnalysis("ac", err)
	if err != nil {
		h.fail(c, fmt.Errorf("%w: %w", ErrAnalysis, err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"sweep": param, "results": result.GetResults()})
}

type BodeQuery struct {
	ACRequest
	Output    string `form:"output" validate:"required"`
	Reference string `form:"reference"`
	Input     string `form:"input"`
}

func (h *Handlers) Bode(c *gin.Context) {
	var q BodeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.fail(c, fmt.Errorf("%w: %v", ErrBadRequest, err))
		return
	}
	if err := validate.Struct(q); err != nil {
		h.fail(c, fmt.Errorf("%w: %s", ErrBadRequest, describeValidation(err)))
		return
	}
	param, err := q.sweep(h.defaults)
	if err != nil {
		h.fail(c, err)
		return
	}
	summary, res, ok := h.resolve(c)
	if !ok {
		return
	}

	req := TransferRequest{Input: q.Input, Output: parseProbe(q.Output)}
	if q.Reference != "" {
		ref := parseProbe(q.Reference)
		req.Reference = &ref
	}
	tfParam, err := req.param(res)
	if err != nil {
		h.fail(c, err)
		return
	}
	tf, err := h.transfer(res.Netlist(summary.Name), tfParam)
	if err != nil {
		h.fail(c, err)
		return
	}

	freqs, err := analysis.GenerateFrequencies(param.Sweep, param.Points, param.FStart, param.FStop)
	if err != nil {
		h.fail(c, fmt.Errorf("%w: %v", ErrBadRequest, err))
		return
	}

	opts := bode.DefaultOptions()
	opts.Title = summary.Name
	var buf bytes.Buffer
	if err := bode.Render(&buf, tf.Response(freqs), opts); err != nil {
		h.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

// -----------------------------------------------------------------------------
// Decks
// -----------------------------------------------------------------------------

func (h *Handlers) readDeck(c *gin.Context) (*netlist.NetlistData, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxDeckBytes))
	if err != nil {
		h.fail(c, fmt.Errorf("%w: reading deck: %v", ErrBadRequest, err))
		return nil, false
	}
	data, err := netlist.Parse(string(body))
	if err != nil {
		h.fail(c, err)
		return nil, false
	}
	return data, true
}

type DeckResponse struct {
	Title    string            `json:"title"`
	Elements []netlist.Element `json:"elements"`
	Analyses []string          `json:"analyses"`
	AC       *netlist.ACParam  `json:"ac,omitempty"`
	TF       *netlist.TFParam  `json:"tf,omitempty"`
}

func (h *Handlers) ParseDeck(c *gin.Context) {
	data, ok := h.readDeck(c)
	if !ok {
		return
	}

	resp := DeckResponse{Title: data.Title, Elements: data.Elements, Analyses: []string{}}
	if resp.Elements == nil {
		resp.Elements = []netlist.Element{}
	}
	for _, a := range data.Analyses {
		resp.Analyses = append(resp.Analyses, a.String())
	}
	if data.Has(netlist.AnalysisAC) {
		resp.AC = &data.ACParam
	}
	if data.Has(netlist.AnalysisTF) {
		resp.TF = &data.TFParam
	}
	c.JSON(http.StatusOK, resp)
}

// DeckTransfer handles POST /v1/netlist/transfer. The output and input query
// parameters override the deck's .tf line.
func (h *Handlers) DeckTransfer(c *gin.Context) {
	data, ok := h.readDeck(c)
	if !ok {
		return
	}

	param := data.TFParam
	if out := c.Query("output"); out != "" {
		o, ref, err := netlist.ParseProbe(out)
		if err != nil {
			h.fail(c, fmt.Errorf("%w: %v", ErrBadRequest, err))
			return
		}
		param.Output, param.Reference = o, ref
	}
	if in := c.Query("input"); in != "" {
		param.Input = in
	}
	if param.Output == "" {
		h.fail(c, fmt.Errorf("%w: deck has no .tf line and no output was given", ErrBadRequest))
		return
	}

	tf, err := h.transfer(data, param)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newTransferResponse(tf, nil))
}
