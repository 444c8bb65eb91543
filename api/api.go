// Package api is the thin REST layer over the ledger components. Handlers
// bind and validate input, call into the ledger and map its errors; they
// never touch batch quantities themselves.
package api

import (
	"context"
	"strconv"

	"github.com/freshtrace/freshtrace_backend/config"
	"github.com/freshtrace/freshtrace_backend/ledger"
	"github.com/freshtrace/freshtrace_backend/models"
	"github.com/freshtrace/freshtrace_backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type API struct {
	db         *gorm.DB
	store      *ledger.BatchStore
	planner    *ledger.AllocationPlanner
	shipments  *ledger.ShipmentLedger
	recalls    *ledger.RecallLedger
	processing *ledger.ProcessingLedger
	guard      *ledger.DependencyGuard
	logger     *logrus.Logger
}

func New(db *gorm.DB) *API {
	return &API{
		db:         db,
		store:      ledger.NewBatchStore(db),
		planner:    ledger.NewAllocationPlanner(db),
		shipments:  ledger.NewShipmentLedger(db),
		recalls:    ledger.NewRecallLedger(db),
		processing: ledger.NewProcessingLedger(db),
		guard:      ledger.NewDependencyGuard(db),
		logger:     config.GetLogger(),
	}
}

// Register mounts all routes under /api/v1.
func (a *API) Register(r *gin.Engine) {

	v1 := r.Group("/api/v1")
	v1.Use(attributionMiddleware())

	v1.GET("/suppliers", a.listSuppliers)
	v1.POST("/suppliers", a.createSupplier)
	v1.GET("/suppliers/:id", a.getSupplier)
	v1.PUT("/suppliers/:id", a.updateSupplier)
	v1.DELETE("/suppliers/:id", a.deleteSupplier)

	v1.GET("/products", a.listProducts)
	v1.POST("/products", a.createProduct)
	v1.GET("/products/:id", a.getProduct)
	v1.PUT("/products/:id", a.updateProduct)
	v1.DELETE("/products/:id", a.deleteProduct)
	v1.GET("/products/:id/picklist", a.previewPicklist)

	v1.GET("/storage-locations", a.listStorageLocations)
	v1.POST("/storage-locations", a.createStorageLocation)
	v1.GET("/storage-locations/:id", a.getStorageLocation)
	v1.PUT("/storage-locations/:id", a.updateStorageLocation)
	v1.DELETE("/storage-locations/:id", a.deleteStorageLocation)

	v1.GET("/batches", a.listBatches)
	v1.POST("/batches", a.createBatch)
	v1.GET("/batches/expired", a.listExpiredBatches)
	v1.GET("/batches/expiring", a.listExpiringBatches)
	v1.GET("/batches/search", a.searchBatches)
	v1.GET("/batches/:id", a.getBatch)
	v1.PUT("/batches/:id", a.updateBatch)
	v1.POST("/batches/:id/adjust", a.adjustBatchQuantity)
	v1.DELETE("/batches/:id", a.deleteBatch)

	v1.GET("/reorder-rules", a.listReorderRules)
	v1.POST("/reorder-rules", a.createReorderRule)
	v1.PUT("/reorder-rules/:id", a.updateReorderRule)
	v1.DELETE("/reorder-rules/:id", a.deleteReorderRule)
	v1.GET("/restock-suggestions", a.listRestockSuggestions)

	v1.GET("/shipments", a.listShipments)
	v1.POST("/shipments", a.createShipment)
	v1.GET("/shipments/:id", a.getShipment)
	v1.PUT("/shipments/:id", a.updateShipment)
	v1.DELETE("/shipments/:id", a.deleteShipment)
	v1.POST("/shipments/:id/lines", a.addShipmentLines)
	v1.PUT("/shipment-lines/:id", a.updateShipmentLine)
	v1.DELETE("/shipment-lines/:id", a.deleteShipmentLine)
	v1.PUT("/shipments/:id/status", a.setShipmentStatus)

	v1.GET("/recalls", a.listRecalls)
	v1.POST("/recalls", a.createRecall)
	v1.GET("/recalls/:id", a.getRecall)
	v1.PUT("/recalls/:id", a.updateRecall)
	v1.DELETE("/recalls/:id", a.deleteRecall)
	v1.POST("/recalls/:id/batches", a.addRecallBatch)
	v1.PUT("/recall-batches/:id", a.updateRecallBatch)
	v1.DELETE("/recall-batches/:id", a.removeRecallBatch)
	v1.PUT("/recalls/:id/status", a.setRecallStatus)
	v1.PUT("/recalls/:id/notifications", a.updateRecallNotifications)

	v1.GET("/processing-sessions", a.listProcessingSessions)
	v1.POST("/processing-sessions", a.createProcessingSession)
	v1.GET("/processing-sessions/:id", a.getProcessingSession)
	v1.DELETE("/processing-sessions/:id", a.deleteProcessingSession)
	v1.POST("/processing-sessions/:id/inputs", a.addProcessingInput)
	v1.POST("/processing-sessions/:id/outputs", a.addProcessingOutput)

	v1.GET("/incidents", a.listIncidents)
	v1.POST("/incidents", a.createIncident)
	v1.GET("/incidents/:id", a.getIncident)
	v1.POST("/incidents/:id/batches", a.addIncidentBatch)

	v1.GET("/users", a.listUsers)
	v1.POST("/users", a.createUser)

	v1.GET("/activity", a.listActivity)
}

// attributionMiddleware stashes best-effort caller identity in the request
// context for the activity log. Auth is out of scope; the surrounding app
// forwards who acted via headers.
func attributionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if v := c.GetHeader("x-user-id"); v != "" {
			if userId, err := strconv.Atoi(v); err == nil {
				ctx = utils.SetUserIdInContext(ctx, userId)
			}
		}
		if v := c.GetHeader("x-user-name"); v != "" {
			ctx = utils.SetUserNameInContext(ctx, v)
		}
		ctx = utils.SetClientIpInContext(ctx, c.ClientIP())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// logActivity records a mutation without failing the request if the insert
// does not go through.
func (a *API) logActivity(ctx context.Context, action string, description string) {
	if err := models.LogActivity(ctx, a.db, action, description); err != nil {
		config.LogError(a.logger, "api", "logActivity", action, description, err)
	}
}

func pathId(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		respondError(c, ledger.NewValidationError("invalid id %q", c.Param("id")))
		return 0, false
	}
	return id, true
}
