package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"dojohub/internal/services"
)

// ClubHandlers serves the CLUB-only features. The service answers 403 for
// every other academy type.
type ClubHandlers struct {
	clubService services.ClubService
}

func NewClubHandlers(clubService services.ClubService) *ClubHandlers {
	return &ClubHandlers{clubService: clubService}
}

// Matches

func (h *ClubHandlers) ListMatches(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	matches, err := h.clubService.ListMatches(c.Request().Context(), id.AcademyID, c.QueryParam("category"))
	if err != nil {
		return err
	}
	return listResponse(c, matches, len(matches), 0, 0)
}

func (h *ClubHandlers) GetMatch(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	matchID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	match, err := h.clubService.GetMatch(c.Request().Context(), id.AcademyID, matchID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, match)
}

func (h *ClubHandlers) CreateMatch(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	var req services.MatchRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	match, err := h.clubService.CreateMatch(c.Request().Context(), id.AcademyID, &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, match)
}

func (h *ClubHandlers) UpdateMatch(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	matchID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	var req services.MatchRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	match, err := h.clubService.UpdateMatch(c.Request().Context(), id.AcademyID, matchID, &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, match)
}

// RecordScore sets the final score and marks the match PLAYED.
func (h *ClubHandlers) RecordScore(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	matchID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	var req services.ScoreRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	match, err := h.clubService.RecordScore(c.Request().Context(), id.AcademyID, matchID, &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, match)
}

func (h *ClubHandlers) DeleteMatch(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	matchID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	if err := h.clubService.DeleteMatch(c.Request().Context(), id.AcademyID, matchID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Evaluations

// ListEvaluations filters by ?player_id. Students only get their own.
func (h *ClubHandlers) ListEvaluations(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	playerID := ownerScope(id)
	if playerID == nil {
		if playerID, err = queryUUID(c, "player_id"); err != nil {
			return err
		}
	}
	evaluations, err := h.clubService.ListEvaluations(c.Request().Context(), id.AcademyID, playerID)
	if err != nil {
		return err
	}
	return listResponse(c, evaluations, len(evaluations), 0, 0)
}

func (h *ClubHandlers) GetEvaluation(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	evaluationID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	evaluation, err := h.clubService.GetEvaluation(c.Request().Context(), id.AcademyID, evaluationID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, evaluation)
}

func (h *ClubHandlers) CreateEvaluation(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	var req services.EvaluationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	evaluation, err := h.clubService.CreateEvaluation(c.Request().Context(), id.AcademyID, id.UserID, &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, evaluation)
}

func (h *ClubHandlers) UpdateEvaluation(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	evaluationID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	var req services.EvaluationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	evaluation, err := h.clubService.UpdateEvaluation(c.Request().Context(), id.AcademyID, evaluationID, &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, evaluation)
}

func (h *ClubHandlers) DeleteEvaluation(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	evaluationID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	if err := h.clubService.DeleteEvaluation(c.Request().Context(), id.AcademyID, evaluationID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Training

func (h *ClubHandlers) ListTrainingSchedules(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	schedules, err := h.clubService.ListTrainingSchedules(c.Request().Context(), id.AcademyID)
	if err != nil {
		return err
	}
	return listResponse(c, schedules, len(schedules), 0, 0)
}

func (h *ClubHandlers) GetTrainingSchedule(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	scheduleID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	schedule, err := h.clubService.GetTrainingSchedule(c.Request().Context(), id.AcademyID, scheduleID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, schedule)
}

func (h *ClubHandlers) CreateTrainingSchedule(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	var req services.TrainingScheduleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	schedule, err := h.clubService.CreateTrainingSchedule(c.Request().Context(), id.AcademyID, &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, schedule)
}

func (h *ClubHandlers) UpdateTrainingSchedule(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	scheduleID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	var req services.TrainingScheduleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	schedule, err := h.clubService.UpdateTrainingSchedule(c.Request().Context(), id.AcademyID, scheduleID, &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, schedule)
}

func (h *ClubHandlers) DeleteTrainingSchedule(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	scheduleID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	if err := h.clubService.DeleteTrainingSchedule(c.Request().Context(), id.AcademyID, scheduleID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ListSessions defaults to the coming week.
func (h *ClubHandlers) ListSessions(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	from, err := queryDate(c, "from")
	if err != nil {
		return err
	}
	to, err := queryDate(c, "to")
	if err != nil {
		return err
	}
	sessions, err := h.clubService.ListSessions(c.Request().Context(), id.AcademyID, from, to, c.QueryParam("category"))
	if err != nil {
		return err
	}
	return listResponse(c, sessions, len(sessions), 0, 0)
}

func (h *ClubHandlers) GetSession(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	sessionID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	session, err := h.clubService.GetSession(c.Request().Context(), id.AcademyID, sessionID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, session)
}

func (h *ClubHandlers) CreateSession(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	var req services.TrainingSessionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	session, err := h.clubService.CreateSession(c.Request().Context(), id.AcademyID, &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, session)
}

func (h *ClubHandlers) UpdateSession(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	sessionID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	var req services.TrainingSessionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	session, err := h.clubService.UpdateSession(c.Request().Context(), id.AcademyID, sessionID, &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, session)
}

func (h *ClubHandlers) DeleteSession(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	sessionID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	if err := h.clubService.DeleteSession(c.Request().Context(), id.AcademyID, sessionID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Expenses

// ListExpenses defaults to the last month.
func (h *ClubHandlers) ListExpenses(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	from, err := queryDate(c, "from")
	if err != nil {
		return err
	}
	to, err := queryDate(c, "to")
	if err != nil {
		return err
	}
	expenses, err := h.clubService.ListExpenses(c.Request().Context(), id.AcademyID, from, to)
	if err != nil {
		return err
	}
	return listResponse(c, expenses, len(expenses), 0, 0)
}

func (h *ClubHandlers) GetExpense(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	expenseID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	expense, err := h.clubService.GetExpense(c.Request().Context(), id.AcademyID, expenseID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, expense)
}

// CreateExpense accepts JSON, or a multipart form with an optional
// "receipt" file.
func (h *ClubHandlers) CreateExpense(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}

	var (
		req     services.ExpenseRequest
		receipt *services.Upload
	)
	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		req = services.ExpenseRequest{
			Category:    strings.TrimSpace(c.FormValue("category")),
			Description: strings.TrimSpace(c.FormValue("description")),
			SpentOn:     strings.TrimSpace(c.FormValue("spent_on")),
		}
		if req.Amount, err = decimal.NewFromString(strings.TrimSpace(c.FormValue("amount"))); err != nil {
			return &services.FieldError{Field: "amount", Message: "amount must be a number"}
		}
		if err := c.Validate(&req); err != nil {
			return err
		}
		var closeFile func()
		receipt, closeFile, err = formUpload(c, "receipt", false)
		if err != nil {
			return err
		}
		defer closeFile()
	} else if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	expense, err := h.clubService.CreateExpense(c.Request().Context(), id.AcademyID, id.UserID, &req, receipt)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, expense)
}

func (h *ClubHandlers) UpdateExpense(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	expenseID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	var req services.ExpenseRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	expense, err := h.clubService.UpdateExpense(c.Request().Context(), id.AcademyID, expenseID, &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, expense)
}

func (h *ClubHandlers) UploadExpenseReceipt(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	expenseID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	receipt, closeFile, err := formUpload(c, "receipt", true)
	if err != nil {
		return err
	}
	defer closeFile()

	expense, err := h.clubService.UploadExpenseReceipt(c.Request().Context(), id.AcademyID, expenseID, receipt)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, expense)
}

func (h *ClubHandlers) DeleteExpense(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	expenseID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	if err := h.clubService.DeleteExpense(c.Request().Context(), id.AcademyID, expenseID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ExpenseSummary totals ?month=2006-01, the current month by default.
func (h *ClubHandlers) ExpenseSummary(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	summary, err := h.clubService.ExpenseSummary(c.Request().Context(), id.AcademyID, c.QueryParam("month"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summary)
}
