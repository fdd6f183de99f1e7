package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wekeepgrowing/board-server/internal/domain/entity"
	"github.com/wekeepgrowing/board-server/internal/domain/model"
	"github.com/wekeepgrowing/board-server/internal/domain/repository"
	"github.com/wekeepgrowing/board-server/internal/domain/service"
	"github.com/wekeepgrowing/board-server/internal/middleware/auth"
	"github.com/wekeepgrowing/board-server/internal/usecase"
	apperrors "github.com/wekeepgrowing/board-server/pkg/errors"
)

const testJWTSecret = "handler-test-secret"

type testServer struct {
	e       *echo.Echo
	boards  *MockBoardRepository
	members *MockMembershipRepository
	token   string
}

type envelope struct {
	StatusCode int               `json:"statusCode"`
	Message    string            `json:"message"`
	Data       json.RawMessage   `json:"data"`
	Paging     *entity.Paging    `json:"paging"`
	Errors     map[string]string `json:"errors"`
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := zap.NewNop()
	tokens, err := service.NewLinkTokenGenerator("handler-link-secret-0123", 10)
	require.NoError(t, err)

	boards := new(MockBoardRepository)
	members := new(MockMembershipRepository)
	repos := usecase.BoardRepositories{Boards: boards, Members: members}
	folders := usecase.StorageFolders{Board: "board", Card: "card"}

	e := echo.New()
	e.HTTPErrorHandler = NewErrorHandler(logger)
	e.Validator = NewRequestValidator()

	api := e.Group("", auth.JWTMiddleware(auth.JWTConfig{Secret: testJWTSecret, Logger: logger}))
	RegisterRoutes(api, Handlers{
		Boards: NewBoardHandler(logger, usecase.NewBoardUsecase(repos, tokens, fakeStorage{}, folders, logger)),
		Cards:  NewCardHandler(logger, usecase.NewCardUsecase(repos, fakeStorage{}, folders, logger)),
		Members: NewMemberHandler(logger, usecase.NewMembershipUsecase(usecase.MembershipRepositories{
			Boards:  boards,
			Members: members,
		}, tokens, "https://app.test", logger)),
	})

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)

	return &testServer{e: e, boards: boards, members: members, token: token}
}

func (s *testServer) do(t *testing.T, method, target, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+s.token)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec, env
}

func TestBoardHandler_ListBoards(t *testing.T) {
	s := newTestServer(t)
	cover := "c.png"
	s.boards.On("ListForUser", mock.Anything, "user-1", mock.MatchedBy(func(q entity.BoardQuery) bool {
		return q.Search == "al" && q.Page == 1 && q.Limit == 5 && q.OrderBy == "title"
	})).Return([]*model.Board{
		{ID: "B11AAAAAAAAA", Title: "Alpha", Cover: &cover, CreatedBy: "user-1"},
	}, int64(6), nil)

	rec, env := s.do(t, http.MethodGet, "/board?s=al&page=1&limit=5&orderBy=title", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, http.StatusOK, env.StatusCode)
	require.NotNil(t, env.Paging)
	assert.Equal(t, entity.Paging{CurrentPage: 1, FirstPage: 1, LastPage: 2, Total: 6}, *env.Paging)

	var boards []map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &boards))
	require.Len(t, boards, 1)
	assert.Equal(t, "B11AAAAAAAAA", boards[0]["board_id"])
	assert.Equal(t, "https://cdn.test/board/c.png", boards[0]["cover"])
	s.boards.AssertExpectations(t)
}

func TestBoardHandler_GetBoardErrors(t *testing.T) {
	t.Run("missing board", func(t *testing.T) {
		s := newTestServer(t)
		s.boards.On("GetByID", mock.Anything, "B1").Return(nil, repository.ErrNotFound)

		rec, env := s.do(t, http.MethodGet, "/board/B1", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, http.StatusNotFound, env.StatusCode)
		assert.Equal(t, "Board not found", env.Message)
	})

	t.Run("not a member", func(t *testing.T) {
		s := newTestServer(t)
		s.boards.On("GetByID", mock.Anything, "B1").Return(&model.Board{ID: "B1"}, nil)
		s.members.On("GetByBoardAndUser", mock.Anything, "B1", "user-1").Return(nil, repository.ErrNotFound)

		rec, env := s.do(t, http.MethodGet, "/board/B1", "")
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "You are not a member of this board", env.Message)
	})

	t.Run("store failure hides the cause", func(t *testing.T) {
		s := newTestServer(t)
		s.boards.On("GetByID", mock.Anything, "B1").Return(nil, errors.New("dial tcp: connection refused"))

		rec, env := s.do(t, http.MethodGet, "/board/B1", "")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Internal Server Error", env.Message)
		assert.NotContains(t, rec.Body.String(), "connection refused")
	})
}

func TestHandlers_RequireAuthentication(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/board", nil)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, http.StatusUnauthorized, env.StatusCode)
	assert.Equal(t, "Authorization header required", env.Message)
}

func TestHandlers_RequestValidation(t *testing.T) {
	tests := []struct {
		name   string
		method string
		target string
		body   string
		field  string
	}{
		{"invite without username", http.MethodPost, "/board/B1/member/invite", `{}`, "username"},
		{"role without value", http.MethodPatch, "/board/B1/member/M1/role", `{"role":""}`, "role"},
		{"board without title", http.MethodPost, "/board", `{"title":""}`, "title"},
		{"card without title", http.MethodPost, "/board/B1", `{"status":"TODO"}`, "title"},
		{"card with bad status", http.MethodPut, "/board/B1/card/C1", `{"status":"LATER"}`, "status"},
		{"card with empty task", http.MethodPut, "/board/B1/card/C1", `{"tasks":[{"task":""}]}`, "tasks[0].task"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)

			rec, env := s.do(t, tt.method, tt.target, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, http.StatusBadRequest, env.StatusCode)
			assert.Contains(t, env.Errors, tt.field)
			s.boards.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
		})
	}
}

type formPart struct {
	name, filename, content string
}

func multipartRequest(t *testing.T, method string, parts ...formPart) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, p := range parts {
		if p.filename != "" {
			fw, err := w.CreateFormFile(p.name, p.filename)
			require.NoError(t, err)
			_, err = fw.Write([]byte(p.content))
			require.NoError(t, err)
			continue
		}
		require.NoError(t, w.WriteField(p.name, p.content))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, "/", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

func newContext(req *http.Request) echo.Context {
	e := echo.New()
	e.Validator = NewRequestValidator()
	return e.NewContext(req, httptest.NewRecorder())
}

func TestBindCardRequest_Multipart(t *testing.T) {
	c := newContext(multipartRequest(t, http.MethodPut,
		formPart{name: "title", content: "Card"},
		formPart{name: "priority", content: "HIGH"},
		formPart{name: "tasks", content: `[{"id":"T1","task":"write","is_done":true},{"task":"review"}]`},
	))

	req, err := bindCardRequest(c)
	require.NoError(t, err)

	require.NotNil(t, req.Title)
	assert.Equal(t, "Card", *req.Title)
	assert.Nil(t, req.Description, "absent field stays nil")
	assert.Nil(t, req.Status)
	require.NotNil(t, req.Priority)
	assert.Equal(t, model.PriorityHigh, *req.Priority)
	require.NotNil(t, req.Tasks)
	assert.Equal(t, []usecase.TaskInput{{ID: "T1", Task: "write", IsDone: true}, {Task: "review"}}, *req.Tasks)
	assert.Nil(t, req.Members, "absent members are left untouched")

	c = newContext(multipartRequest(t, http.MethodPut, formPart{name: "members", content: "not json"}))
	_, err = bindCardRequest(c)
	require.Error(t, err)
	var appErr *apperrors.AppError
	require.True(t, apperrors.As(err, &appErr))
	assert.Contains(t, appErr.Details(), "members")
}

func TestFormCover(t *testing.T) {
	png := "\x89PNG\r\n\x1a\n" + strings.Repeat("\x00", 32)

	t.Run("image", func(t *testing.T) {
		c := newContext(multipartRequest(t, http.MethodPost, formPart{name: "cover", filename: "a.png", content: png}))

		upload, closeCover, err := formCover(c)
		require.NoError(t, err)
		defer closeCover()
		require.NotNil(t, upload)
		assert.Equal(t, "image/png", upload.ContentType)
		assert.Equal(t, "a.png", upload.Filename)

		var body bytes.Buffer
		_, err = body.ReadFrom(upload.Body)
		require.NoError(t, err)
		assert.Equal(t, png, body.String(), "body is rewound after sniffing")
	})

	t.Run("not an image", func(t *testing.T) {
		c := newContext(multipartRequest(t, http.MethodPost, formPart{name: "cover", filename: "a.png", content: "hello"}))

		_, closeCover, err := formCover(c)
		defer closeCover()
		assert.Equal(t, apperrors.ErrInvalidArgument, apperrors.CodeOf(err))
	})

	t.Run("absent", func(t *testing.T) {
		c := newContext(multipartRequest(t, http.MethodPost, formPart{name: "title", content: "x"}))

		upload, closeCover, err := formCover(c)
		defer closeCover()
		assert.NoError(t, err)
		assert.Nil(t, upload)
	})
}
