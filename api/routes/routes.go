package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/lottoworks/luckydraw-backend/internal/config"
	"github.com/lottoworks/luckydraw-backend/internal/handlers"
	"github.com/lottoworks/luckydraw-backend/internal/middleware"
)

// Handlers bundles the handler set SetupRouter wires up
type Handlers struct {
	Auth   *handlers.AuthHandler
	Draw   *handlers.DrawHandler
	Prize  *handlers.PrizeHandler
	Oracle *handlers.OracleHandler
	Ticket *handlers.TicketHandler
}

// SetupRouter sets up the router
func SetupRouter(cfg *config.Config, h Handlers) *gin.Engine {
	router := gin.Default()

	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.RequestIDMiddleware())

	// Public routes
	public := router.Group("/api/v1")
	{
		public.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{"status": "ok"})
		})

		public.POST("/auth/login", h.Auth.Login)

		draws := public.Group("/draws")
		{
			draws.GET("", h.Draw.GetDraws)
			draws.GET("/current", h.Draw.GetCurrentDraw)
			draws.GET("/:number", h.Draw.GetDrawByNumber)
			draws.GET("/:number/winners", h.Draw.GetWinners)
			draws.POST("/purchase", h.Draw.Purchase)
			// anyone may close an elapsed sale
			draws.POST("/trigger", h.Draw.TriggerDraw)
		}

		tickets := public.Group("/tickets")
		{
			tickets.GET("/draw/:number", h.Ticket.GetTicketsByDraw)
			tickets.GET("/:number/owner", h.Ticket.GetTicketOwner)
		}

		prizes := public.Group("/prizes")
		{
			prizes.GET("/pool", h.Prize.GetPoolBalance)
			prizes.GET("/claimable/:account", h.Prize.GetClaimable)
			prizes.GET("/distributions/:number", h.Prize.GetDistribution)
			prizes.GET("/transactions/:account", h.Prize.GetTransactions)
			prizes.POST("/claim", h.Prize.Claim)
		}
	}

	// Oracle callback routes, authenticated by the shared callback key
	oracle := router.Group("/api/v1/oracle")
	oracle.Use(middleware.OracleAuthMiddleware(cfg))
	{
		oracle.POST("/fulfillments", h.Oracle.Fulfill)
		oracle.GET("/requests/:number", h.Oracle.GetRequestByDraw)
	}

	// Administrative routes
	admin := router.Group("/api/v1/admin")
	admin.Use(middleware.JWTAuthMiddleware(cfg))
	{
		admin.POST("/draws/open", h.Draw.OpenDraw)
		admin.POST("/draws/emergency-stop", h.Draw.EmergencyStop)

		settings := admin.Group("/settings")
		{
			settings.PUT("/ticket-price", h.Draw.SetTicketPrice)
			settings.PUT("/sale-period", h.Draw.SetSalePeriod)
			settings.PUT("/fee-rate", h.Prize.SetFeeRate)
			settings.PUT("/distribution-ratios", h.Prize.SetDistributionRatios)
		}
	}

	return router
}
