package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/abhisek/sleuth/internal/api"
	"github.com/abhisek/sleuth/internal/engine"
)

func errorBody(detail string) api.ErrorBody {
	return api.ErrorBody{Detail: detail}
}

// fail writes err as a {"detail": ...} body. Engine errors keep their own
// status and message; anything else is a 500.
func (s *Server) fail(c *gin.Context, err error) {
	var qe *engine.QueryError
	if errors.As(err, &qe) && qe.Code != engine.CodeInternal {
		c.JSON(qe.Code.Status(), errorBody(qe.Message))
		return
	}
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, errorBody("internal server error"))
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, api.HealthInfo{Status: "ok", Version: api.ProtocolVersion})
}

// tablesBody returns a lone table as is and several as {"tables": [...]}.
func tablesBody[T any](tables []T) any {
	if len(tables) == 1 {
		return tables[0]
	}
	return gin.H{"tables": tables}
}

func (s *Server) schema(c *gin.Context) {
	tables, err := s.engine.Schema(c.Param("caseId"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, tablesBody(tables))
}

func (s *Server) data(c *gin.Context) {
	tables, err := s.engine.Data(c.Request.Context(), c.Param("caseId"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, tablesBody(tables))
}

func (s *Server) executeSQL(c *gin.Context) {
	var req api.QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("Invalid request body"))
		return
	}

	res, err := s.engine.Execute(c.Request.Context(), req.Query, req.CaseID)
	if err != nil {
		s.metrics.queries.WithLabelValues("error").Inc()
		s.fail(c, err)
		return
	}
	s.metrics.queries.WithLabelValues(outcome(res)).Inc()
	if res.Correct() {
		s.logger.Info("case solved", zap.String("case_id", req.CaseID))
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) checkSolution(c *gin.Context) {
	var req api.QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("Invalid request body"))
		return
	}

	res, err := s.engine.Check(c.Request.Context(), req.Query, req.CaseID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func outcome(res *api.QueryResult) string {
	switch {
	case res.IsCorrect == nil:
		return "ok"
	case *res.IsCorrect:
		return "correct"
	default:
		return "incorrect"
	}
}
