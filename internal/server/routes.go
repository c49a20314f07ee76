package server

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the /v1 endpoints on rg.
//
// Designs:
//
//	POST   /designs
//	GET    /designs
//	GET    /designs/:id
//	DELETE /designs/:id
//
// Editing:
//
//	POST   /designs/:id/components
//	POST   /designs/:id/drop
//	PATCH  /designs/:id/components/:cid
//	PUT    /designs/:id/components/:cid/value
//	PUT    /designs/:id/components/:cid/label
//	DELETE /designs/:id/components/:cid
//	POST   /designs/:id/wires
//	DELETE /designs/:id/wires/:wid
//	POST   /designs/:id/undo
//	POST   /designs/:id/redo
//
// Analysis:
//
//	GET    /designs/:id/netlist[?format=spice]
//	GET    /designs/:id/check
//	POST   /designs/:id/transfer
//	POST   /designs/:id/ac
//	GET    /designs/:id/bode.png
//	POST   /netlist/parse
//	POST   /netlist/transfer
func RegisterRoutes(rg *gin.RouterGroup, h *Handlers) {
	rg.GET("/components", h.ListComponents)

	designs := rg.Group("/designs")
	{
		designs.POST("", h.CreateDesign)
		designs.GET("", h.ListDesigns)
		designs.GET("/:id", h.GetDesign)
		designs.DELETE("/:id", h.DeleteDesign)

		designs.POST("/:id/components", h.AddComponent)
		designs.POST("/:id/drop", h.DropComponent)
		designs.PATCH("/:id/components/:cid", h.MoveComponent)
		designs.PUT("/:id/components/:cid/value", h.SetValue)
		designs.PUT("/:id/components/:cid/label", h.SetLabel)
		designs.DELETE("/:id/components/:cid", h.RemoveComponent)
		designs.POST("/:id/wires", h.Connect)
		designs.DELETE("/:id/wires/:wid", h.Disconnect)
		designs.POST("/:id/undo", h.Undo)
		designs.POST("/:id/redo", h.Redo)

		designs.GET("/:id/netlist", h.Netlist)
		designs.GET("/:id/check", h.Check)
		designs.POST("/:id/transfer", h.Transfer)
		designs.POST("/:id/ac", h.AC)
		designs.GET("/:id/bode.png", h.Bode)
	}

	decks := rg.Group("/netlist")
	{
		decks.POST("/parse", h.ParseDeck)
		decks.POST("/transfer", h.DeckTransfer)
	}
}
