package graphql

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/graphql-go/graphql"
	"github.com/rs/zerolog"

	"github.com/Gustavo-Marin05/media-service/internal/utils/platformerrors"
)

type requestBody struct {
	Query         string                 `json:"query" form:"query"`
	OperationName string                 `json:"operationName" form:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

// Handler serves GraphQL over GET and POST.
type Handler struct {
	schema graphql.Schema
	log    zerolog.Logger
}

func NewHandler(service MediaService, log zerolog.Logger) (*Handler, error) {
	schema, err := NewSchema(service)
	if err != nil {
		return nil, err
	}
	return &Handler{
		schema: schema,
		log:    log.With().Str("component", "graphql-handler").Logger(),
	}, nil
}

// Serve executes one GraphQL operation. Resolver failures are reported in the errors
// array with a 200 status, as GraphQL clients expect.
func (h *Handler) Serve(c *gin.Context) {
	var body requestBody
	if c.Request.Method == http.MethodGet {
		body.Query = c.Query("query")
		body.OperationName = c.Query("operationName")
		if raw := c.Query("variables"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &body.Variables); err != nil {
				platformerrors.WriteValidationError(c, "variables must be a JSON object")
				return
			}
		}
	} else if err := c.ShouldBindJSON(&body); err != nil {
		platformerrors.WriteValidationError(c, "invalid GraphQL request body")
		return
	}

	if body.Query == "" {
		platformerrors.WriteValidationError(c, "query is required")
		return
	}

	result := graphql.Do(graphql.Params{
		Schema:         h.schema,
		RequestString:  body.Query,
		VariableValues: body.Variables,
		OperationName:  body.OperationName,
		Context:        c.Request.Context(),
	})
	if result.HasErrors() {
		h.log.Warn().Int("errors", len(result.Errors)).Str("operation", body.OperationName).Msg("graphql request returned errors")
	}
	c.JSON(http.StatusOK, result)
}
