package api

import (
	"net/http" // HTTP status codes
	"strconv"  // Path parameter parsing

	"poker_ledger/internal/domain"     // Importing domain models
	"poker_ledger/internal/ledger"     // Session ledger
	"poker_ledger/internal/middleware" // Caller identity

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/shopspring/decimal" // Fixed-point money
)

// CreateSessionRequest is the body of POST /sessions
type CreateSessionRequest struct {
	BuyInAmount    *decimal.Decimal `json:"buy_in_amount" binding:"required,gt=0"`
	CashOutAmount  *decimal.Decimal `json:"cash_out_amount" binding:"required,gte=0"`
	NumberOfBuyIns *int             `json:"number_of_buy_ins" binding:"required,gt=0"`
	Stakes         string           `json:"stakes" binding:"required,stakes"`
	GameType       string           `json:"game_type" binding:"required,oneof=NLH PLO"`
	Location       string           `json:"location" binding:"required"`
	SessionDate    string           `json:"session_date" binding:"required,isodate"`
	Notes          *string          `json:"notes"`
}

// UpdateSessionRequest is the body of PATCH /sessions/:id; absent fields stay untouched
type UpdateSessionRequest struct {
	BuyInAmount    *decimal.Decimal `json:"buy_in_amount" binding:"omitempty,gt=0"`
	CashOutAmount  *decimal.Decimal `json:"cash_out_amount" binding:"omitempty,gte=0"`
	NumberOfBuyIns *int             `json:"number_of_buy_ins" binding:"omitempty,gt=0"`
	Stakes         *string          `json:"stakes" binding:"omitempty,stakes"`
	GameType       *string          `json:"game_type" binding:"omitempty,oneof=NLH PLO"`
	Location       *string          `json:"location" binding:"omitempty,min=1"`
	SessionDate    *string          `json:"session_date" binding:"omitempty,isodate"`
	Notes          *string          `json:"notes"`
}

// SessionResponse is returned by every session mutation
type SessionResponse struct {
	Message           string          `json:"message"`             // Outcome
	Session           *domain.Session `json:"session"`             // Affected row
	CumulativeWinLoss decimal.Decimal `json:"cumulative_win_loss"` // Caller's new total
}

// SessionListResponse is returned by GET /sessions
type SessionListResponse struct {
	Sessions          []domain.Session `json:"sessions"`            // Active sessions, newest first
	CumulativeWinLoss decimal.Decimal  `json:"cumulative_win_loss"` // Caller's total
}

func (r UpdateSessionRequest) patch() ledger.SessionPatch {
	p := ledger.SessionPatch{
		BuyInAmount:    r.BuyInAmount,
		CashOutAmount:  r.CashOutAmount,
		NumberOfBuyIns: r.NumberOfBuyIns,
		Stakes:         r.Stakes,
		GameType:       r.GameType,
		Location:       r.Location,
		Notes:          r.Notes,
	}
	if r.SessionDate != nil {
		day, _ := parseISODate(*r.SessionDate) // Already validated by binding
		p.SessionDate = &day
	}
	return p
}

// CreateSessionHandler records a session for the caller
func CreateSessionHandler(l *ledger.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Access token is missing."})
			return
		}
		var req CreateSessionRequest
		if !bindJSON(c, &req) {
			return
		}
		day, _ := parseISODate(req.SessionDate) // Already validated by binding
		s, total, err := l.Create(c.Request.Context(), userID, ledger.SessionInput{
			BuyInAmount:    *req.BuyInAmount,
			CashOutAmount:  *req.CashOutAmount,
			NumberOfBuyIns: *req.NumberOfBuyIns,
			Stakes:         req.Stakes,
			GameType:       req.GameType,
			Location:       req.Location,
			SessionDate:    day,
			Notes:          req.Notes,
		})
		if err != nil {
			internalError(c, err)
			return
		}
		c.JSON(http.StatusCreated, SessionResponse{Message: "Session added successfully.", Session: s, CumulativeWinLoss: total})
	}
}

// ListSessionsHandler returns the caller's active sessions and running total
func ListSessionsHandler(l *ledger.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Access token is missing."})
			return
		}
		sessions, total, err := l.List(c.Request.Context(), userID)
		if err != nil {
			internalError(c, err)
			return
		}
		c.JSON(http.StatusOK, SessionListResponse{Sessions: sessions, CumulativeWinLoss: total})
	}
}

// UpdateSessionHandler patches one of the caller's sessions
func UpdateSessionHandler(l *ledger.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Access token is missing."})
			return
		}
		sessionID, ok := sessionIDParam(c)
		if !ok {
			return
		}
		var req UpdateSessionRequest
		if !bindJSON(c, &req) {
			return
		}
		s, total, err := l.Update(c.Request.Context(), userID, sessionID, req.patch())
		if err != nil {
			respondError(c, err, "Session not found.")
			return
		}
		c.JSON(http.StatusOK, SessionResponse{Message: "Session updated successfully.", Session: s, CumulativeWinLoss: total})
	}
}

// DeleteSessionHandler soft-deletes one of the caller's sessions
func DeleteSessionHandler(l *ledger.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Access token is missing."})
			return
		}
		sessionID, ok := sessionIDParam(c)
		if !ok {
			return
		}
		s, total, err := l.SoftDelete(c.Request.Context(), userID, sessionID)
		if err != nil {
			respondError(c, err, "Session not found.")
			return
		}
		c.JSON(http.StatusOK, SessionResponse{Message: "Session deleted successfully.", Session: s, CumulativeWinLoss: total})
	}
}

// sessionIDParam parses :id, answering 400 itself when it is not an integer
func sessionIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": []FieldError{{Field: "id", Message: messageFor("id", "int")}}})
		return 0, false
	}
	return uint(id), true
}
