package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	lf "github.com/davicafu/medialist/internal/listfilter/domain"
	"github.com/davicafu/medialist/internal/scene/application"
	sceneDomain "github.com/davicafu/medialist/internal/scene/domain"
	"github.com/davicafu/medialist/tests/mocks"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func setupRouter(t *testing.T, usage sceneDomain.FilterUsageRepository, scenes ...*sceneDomain.Scene) (*gin.Engine, *mocks.InMemorySceneRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := mocks.NewInMemorySceneRepo(scenes...)
	service := application.NewSceneService(repo, usage, nil, zap.NewNop())
	codec := lf.NewCodec(nil, lf.FixedSeedSource(42), zap.NewNop())

	r := gin.New()
	RegisterSceneRoutes(r, NewSceneHandler(service, codec))
	return r, repo
}

func doRequest(r *gin.Engine, method, target string, body []byte) (*httptest.ResponseRecorder, envelope) {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func mustScene(t *testing.T, title string, height int) *sceneDomain.Scene {
	t.Helper()
	s, err := sceneDomain.NewScene(title, "/media/"+title+".mp4", height*16/9, height)
	require.NoError(t, err)
	return s
}

func TestSceneHandler_FindScenes(t *testing.T) {
	// Arrange
	r, _ := setupRouter(t, nil,
		mustScene(t, "alpha", 2160),
		mustScene(t, "beta", 1080),
		mustScene(t, "gamma", 2160),
	)
	q := url.Values{"c": {`{"type":"resolution","value":"4k"}`}, "sortby": {"title"}, "sortdir": {"desc"}}

	// Act
	w, env := doRequest(r, http.MethodGet, "/scenes?"+q.Encode(), nil)

	// Assert
	require.Equal(t, http.StatusOK, w.Code)
	var result application.FindResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, 2, result.Count)
	require.Len(t, result.Scenes, 2)
	assert.Equal(t, "gamma", result.Scenes[0].Title)
	assert.Equal(t, "alpha", result.Scenes[1].Title)
	assert.Equal(t, lf.SortDesc, result.FindFilter.Direction)
}

func TestSceneHandler_FindScenes_InvalidSort(t *testing.T) {
	r, _ := setupRouter(t, nil)

	w, env := doRequest(r, http.MethodGet, "/scenes?sortby=bitrate", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	assert.Contains(t, env.Error.Message, "bitrate")
}

func TestSceneHandler_PreviewFilter(t *testing.T) {
	// Arrange
	r, repo := setupRouter(t, nil)
	q := url.Values{
		"q":       {"beach"},
		"p":       {"3"},
		"perPage": {"40"},
		"c":       {`{"type":"resolution","value":"720p"}`},
	}

	// Act
	w, env := doRequest(r, http.MethodGet, "/scenes/filter?"+q.Encode(), nil)

	// Assert
	require.Equal(t, http.StatusOK, w.Code)
	var preview struct {
		FindFilter  lf.FindFilter              `json:"find_filter"`
		SceneFilter map[string]json.RawMessage `json:"scene_filter"`
		Query       string                     `json:"query"`
		QueryParams map[string][]string        `json:"query_params"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &preview))

	assert.Equal(t, "beach", preview.FindFilter.Q)
	assert.Equal(t, 3, preview.FindFilter.Page)
	assert.Equal(t, 40, preview.FindFilter.PerPage)
	assert.JSONEq(t, `"STANDARD_HD"`, string(preview.SceneFilter["resolution"]))
	assert.Equal(t, []string{"3"}, preview.QueryParams["p"])
	assert.Contains(t, preview.Query, "q=beach")
	assert.Zero(t, repo.CallCount("Count"), "la vista previa no consulta el repositorio")
}

func TestSceneHandler_CreateScene(t *testing.T) {
	testCases := []struct {
		name           string
		body           string
		expectedStatus int
	}{
		{"Valid scene", `{"title":"nueva","path":"/media/nueva.mp4","width":1920,"height":1080}`, http.StatusCreated},
		{"Invalid rating", `{"title":"mala","path":"/media/mala.mp4","width":1920,"height":1080,"rating":120}`, http.StatusBadRequest},
		{"Missing path", `{"title":"sin ruta","width":1920,"height":1080}`, http.StatusBadRequest},
		{"Malformed JSON", `{"title":`, http.StatusBadRequest},
		{"Duplicated path", `{"title":"otra","path":"/media/existente.mp4","width":1920,"height":1080}`, http.StatusConflict},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			r, _ := setupRouter(t, nil, mustScene(t, "existente", 1080))

			// Act
			w, env := doRequest(r, http.MethodPost, "/scenes", []byte(tc.body))

			// Assert
			assert.Equal(t, tc.expectedStatus, w.Code)
			if tc.expectedStatus == http.StatusCreated {
				var created sceneDomain.Scene
				require.NoError(t, json.Unmarshal(env.Data, &created))
				assert.Equal(t, "nueva", created.Title)
				assert.NotEqual(t, uuid.Nil, created.ID)
			} else {
				assert.NotNil(t, env.Error)
			}
		})
	}
}

func TestSceneHandler_GetScene(t *testing.T) {
	existing := mustScene(t, "alpha", 720)
	r, _ := setupRouter(t, nil, existing)

	t.Run("found", func(t *testing.T) {
		w, env := doRequest(r, http.MethodGet, "/scenes/"+existing.ID.String(), nil)

		require.Equal(t, http.StatusOK, w.Code)
		var got sceneDomain.Scene
		require.NoError(t, json.Unmarshal(env.Data, &got))
		assert.Equal(t, existing.ID, got.ID)
	})

	t.Run("not found", func(t *testing.T) {
		w, _ := doRequest(r, http.MethodGet, "/scenes/"+uuid.NewString(), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		w, _ := doRequest(r, http.MethodGet, "/scenes/not-a-uuid", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSceneHandler_TopCriteria(t *testing.T) {
	t.Run("analytics disabled", func(t *testing.T) {
		r, _ := setupRouter(t, nil)

		w, _ := doRequest(r, http.MethodGet, "/scenes/analytics/top-criteria", nil)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("invalid limit", func(t *testing.T) {
		r, _ := setupRouter(t, new(mocks.MockFilterUsageRepository))

		w, _ := doRequest(r, http.MethodGet, "/scenes/analytics/top-criteria?limit=cero", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("ranking", func(t *testing.T) {
		// Arrange
		usage := new(mocks.MockFilterUsageRepository)
		usage.On("TopCriteria", mock.Anything, mock.AnythingOfType("time.Time"), 5).
			Return([]sceneDomain.CriterionUsage{{Criterion: "resolution", Uses: 12}}, nil).Once()
		r, _ := setupRouter(t, usage)

		// Act
		w, env := doRequest(r, http.MethodGet, "/scenes/analytics/top-criteria?hours=6&limit=5", nil)

		// Assert
		require.Equal(t, http.StatusOK, w.Code)
		var top []sceneDomain.CriterionUsage
		require.NoError(t, json.Unmarshal(env.Data, &top))
		assert.Equal(t, []sceneDomain.CriterionUsage{{Criterion: "resolution", Uses: 12}}, top)
		usage.AssertExpectations(t)
	})
}
