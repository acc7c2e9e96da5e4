package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"

	"github.com/cyber-Je-di/tuta-pamodzi/internal/dto"
	"github.com/cyber-Je-di/tuta-pamodzi/internal/handler"
	"github.com/cyber-Je-di/tuta-pamodzi/internal/service"
)

type stubReviewService struct {
	ranking []dto.TutorRankingEntry
}

func (s stubReviewService) Submit(context.Context, service.Actor, dto.ReviewCreateRequest) (dto.ReviewResponse, error) {
	return dto.ReviewResponse{}, service.ErrNotEligible
}

func (s stubReviewService) ListForTutor(context.Context, uint) ([]dto.ReviewResponse, error) {
	return nil, nil
}

func (s stubReviewService) Stats(context.Context, uint) (dto.ReviewStats, error) {
	return dto.ReviewStats{}, nil
}

func (s stubReviewService) Ranking(context.Context) ([]dto.TutorRankingEntry, error) {
	return s.ranking, nil
}

type stubDashboardService struct {
	tutor dto.TutorDashboardResponse
}

func (s stubDashboardService) Tutor(context.Context, service.Actor) (dto.TutorDashboardResponse, error) {
	return s.tutor, nil
}

func (s stubDashboardService) Student(context.Context, service.Actor) (dto.StudentDashboardResponse, error) {
	return dto.StudentDashboardResponse{}, service.ErrUnauthorized
}

func (s stubDashboardService) Admin(context.Context, service.Actor) (dto.AdminDashboardResponse, error) {
	return dto.AdminDashboardResponse{}, service.ErrUnauthorized
}

func compileSchema(t *testing.T, name string) *jsonschema.Schema {
	t.Helper()
	schemaPath, err := filepath.Abs(filepath.Join("testdata", "contracts", name))
	require.NoError(t, err)

	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true
	schema, err := compiler.Compile("file://" + schemaPath)
	require.NoError(t, err)
	return schema
}

func validateBody(t *testing.T, schema *jsonschema.Schema, resp *http.Response) {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var payload interface{}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.NoError(t, schema.Validate(payload))
}

func TestTutorRankingContract(t *testing.T) {
	schema := compileSchema(t, "tutor_ranking.schema.json")

	unza := uint(1)
	reviews := handler.NewReviewHandler(stubReviewService{ranking: []dto.TutorRankingEntry{
		{TutorID: 7, FullName: "Bob Banda", Username: "bobtutor", UniversityID: &unza, ReviewCount: 3, AverageRating: 4.67},
		{TutorID: 9, FullName: "Chanda Mwale", Username: "chanda", ReviewCount: 1, AverageRating: 4},
	}}, zerolog.Nop())

	app := fiber.New()
	reviews.RegisterPublic(app.Group("/api/v1/tutors"))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/tutors/ranking", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	validateBody(t, schema, resp)
}

func TestTutorDashboardContract(t *testing.T) {
	schema := compileSchema(t, "tutor_dashboard.schema.json")

	now := time.Now().UTC()
	dashboards := handler.NewDashboardHandler(stubDashboardService{tutor: dto.TutorDashboardResponse{
		Students: dto.StudentCounts{Total: 3, Pending: 1, Approved: 2},
		Revenue: dto.RevenueSummary{
			Period:          now.Format("2006-01"),
			Total:           300,
			CommissionOwed:  30,
			NetEarnings:     270,
			PaymentsCounted: 2,
		},
		Reviews: dto.ReviewStats{Count: 1, AverageRating: 5, AverageContentClear: 4, AverageResponsive: 5},
		LatestReviews: []dto.ReviewResponse{
			{ID: 1, StudentID: 2, StudentName: "Alice Phiri", TutorID: 7, Rating: 5, ContentClearScore: 4, TutorResponsiveScore: 5, Comment: "Clear explanations", CreatedAt: now},
		},
		GeneratedAt: now,
	}}, zerolog.Nop())

	app := fiber.New()
	dashboards.Register(app.Group("/api/v1/dashboard"))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/tutor", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	validateBody(t, schema, resp)
}

func TestErrorContract(t *testing.T) {
	schema := compileSchema(t, "error.schema.json")

	app := fiber.New()
	handler.NewReviewHandler(stubReviewService{}, zerolog.Nop()).Register(app.Group("/api/v1/reviews"))
	handler.NewDashboardHandler(stubDashboardService{}, zerolog.Nop()).Register(app.Group("/api/v1/dashboard"))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reviews", jsonBody(t, map[string]interface{}{"tutor_id": 7, "rating": 5}))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	validateBody(t, schema, resp)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/student", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	validateBody(t, schema, resp)

	env := newTestApp(t)
	resp = env.request(t, http.MethodPost, "/api/v1/auth/register/tutor", "", map[string]string{"username": "x"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	validateBody(t, schema, resp)
}

func jsonBody(t *testing.T, v interface{}) io.Reader {
	t.Helper()
	payload, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(payload)
}
