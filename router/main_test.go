package router

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/dibyendu2004/BrightPath/api"
	"github.com/dibyendu2004/BrightPath/config"
	"github.com/dibyendu2004/BrightPath/database"
	"github.com/dibyendu2004/BrightPath/model"
	"github.com/dibyendu2004/BrightPath/services"
	"github.com/dibyendu2004/BrightPath/utils/logger"
	"github.com/dibyendu2004/BrightPath/utils/middleware"
	"github.com/dibyendu2004/BrightPath/utils/webhook"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var webhookSecret = "whsec_" + base64.StdEncoding.EncodeToString([]byte("router-test-signing-key"))

type testServer struct {
	app      *fiber.App
	store    *database.GORMStore
	verifier *webhook.Verifier
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log := logger.NewNop()

	store, err := database.OpenInMemory(log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, database.RunSeeds(store.GetDB(), log))

	verifier, err := webhook.NewVerifier(webhookSecret)
	require.NoError(t, err)

	server := api.NewAPIServer(":0", log)
	app := server.GetEngine()
	svc := services.NewServices(store.GetDB(), log, nil, nil)
	SetupRoutes(app, store, svc, Config{
		AuthMode:        config.AuthModeHeader,
		WebhookVerifier: verifier,
		Log:             log,
	})

	return &testServer{app: app, store: store, verifier: verifier}
}

func (s *testServer) do(t *testing.T, method, path, userID string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set(middleware.HeaderUserID, userID)
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestRootAndUnknownRoute(t *testing.T) {
	s := newTestServer(t)

	resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	raw, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "API is Working", string(raw))

	status, body := s.do(t, http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "NOT_FOUND", body["code"])
}

func TestProtectedRoutesRequireIdentity(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodGet, "/api/user/data", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Not Authorized", body["message"])
}

func TestPublicCatalog(t *testing.T) {
	s := newTestServer(t)

	_, body := s.do(t, http.MethodGet, "/api/course/all", "", nil)
	require.Equal(t, true, body["success"])
	assert.Len(t, body["courses"], 2)

	_, body = s.do(t, http.MethodGet, "/api/course/course_demo_go", "", nil)
	require.Equal(t, true, body["success"])
	course := body["courseData"].(map[string]interface{})
	chapters := course["courseContent"].([]interface{})
	first := chapters[0].(map[string]interface{})["chapterContent"].([]interface{})
	assert.NotEmpty(t, first[0].(map[string]interface{})["lectureUrl"], "free preview keeps its url")
	assert.Empty(t, first[1].(map[string]interface{})["lectureUrl"], "paid lecture url is hidden")

	_, body = s.do(t, http.MethodGet, "/api/course/missing", "", nil)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Course Not Found", body["message"])
}

func TestStudentJourney(t *testing.T) {
	s := newTestServer(t)
	student := database.DemoStudentID

	_, body := s.do(t, http.MethodPost, "/api/user/purchase", student, map[string]string{"courseId": "course_demo_go"})
	require.Equal(t, true, body["success"], body)
	assert.Equal(t, "Course Purchased Successfully", body["message"])

	_, body = s.do(t, http.MethodPost, "/api/user/purchase", student, map[string]string{"courseId": "course_demo_go"})
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Course already purchased", body["message"])

	_, body = s.do(t, http.MethodPost, "/api/user/update-progress", student, map[string]string{"courseId": "course_demo_go", "lectureId": "go-l1"})
	assert.Equal(t, "Progress Updated", body["message"])
	_, body = s.do(t, http.MethodPost, "/api/user/update-progress", student, map[string]string{"courseId": "course_demo_go", "lectureId": "go-l1"})
	assert.Equal(t, "Lecture already completed", body["message"])

	_, body = s.do(t, http.MethodGet, "/api/user/progress/course_demo_go", student, nil)
	progress := body["progress"].(map[string]interface{})
	assert.Equal(t, []interface{}{"go-l1"}, progress["completedLectures"])

	_, body = s.do(t, http.MethodPost, "/api/user/rating", student, map[string]interface{}{"courseId": "course_demo_go", "rating": 4})
	assert.Equal(t, "Rating added", body["message"])
	_, body = s.do(t, http.MethodPost, "/api/user/rating", student, map[string]interface{}{"courseId": "course_demo_go", "rating": 9})
	assert.Equal(t, "Invalid Details", body["message"])

	_, body = s.do(t, http.MethodGet, "/api/user/enrolled-courses", student, nil)
	enrolled := body["enrolledCourses"].([]interface{})
	require.Len(t, enrolled, 1)
	assert.Equal(t, float64(20), enrolled[0].(map[string]interface{})["completionPercentage"])

	_, body = s.do(t, http.MethodGet, "/api/educator/dashboard-data", database.DemoEducatorID, nil)
	dashboard := body["dashboardData"].(map[string]interface{})
	assert.Equal(t, 39.99, dashboard["totalEarnings"])
	assert.Equal(t, float64(2), dashboard["totalCourses"])
	assert.Len(t, dashboard["enrolledStudentsData"], 1)
}

func TestEducatorCannotBuyOwnCourse(t *testing.T) {
	s := newTestServer(t)

	_, body := s.do(t, http.MethodPost, "/api/user/purchase", database.DemoEducatorID, map[string]string{"courseId": "course_demo_sql"})
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "FORBIDDEN", body["code"])
}

func TestAddCourseWithoutAssetHost(t *testing.T) {
	s := newTestServer(t)

	_, body := s.do(t, http.MethodPost, "/api/educator/add-course", database.DemoEducatorID, nil)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Thumbnail not attached", body["message"])
}

func TestClerkWebhook(t *testing.T) {
	s := newTestServer(t)

	payload := []byte(`{"type":"user.created","data":{"id":"user_hook","email_addresses":[{"email_address":"hook@example.com"}],"first_name":"Hook","last_name":"User","image_url":"https://img.example.com/h.png"}}`)

	send := func(signature string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/webhooks/clerk", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		now := time.Now()
		req.Header.Set(webhook.HeaderID, "msg_1")
		req.Header.Set(webhook.HeaderTimestamp, strconv.FormatInt(now.Unix(), 10))
		if signature == "" {
			var err error
			signature, err = s.verifier.Sign("msg_1", now, payload)
			require.NoError(t, err)
		}
		req.Header.Set(webhook.HeaderSignature, signature)
		resp, err := s.app.Test(req, -1)
		require.NoError(t, err)
		return resp.StatusCode
	}

	assert.Equal(t, http.StatusBadRequest, send("v1,Zm9yZ2Vk"))
	assert.Equal(t, http.StatusOK, send(""))

	var user model.User
	require.NoError(t, s.store.GetDB().First(&user, "id = ?", "user_hook").Error)
	assert.Equal(t, "Hook User", user.Name)
	assert.Equal(t, model.RoleStudent, user.Role)
}
