package usecase_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wekeepgrowing/board-server/internal/domain/repository"
	"github.com/wekeepgrowing/board-server/internal/domain/service"
	"github.com/wekeepgrowing/board-server/internal/usecase"
)

const testClientURL = "https://app.test"

type harness struct {
	store     *memStore
	storage   *memStorage
	publisher *recordingPublisher
	tokens    *service.LinkTokenGenerator

	boards     *usecase.BoardUsecase
	cards      *usecase.CardUsecase
	membership *usecase.MembershipUsecase
}

func newHarness(t *testing.T, limiter repository.JoinLimiter) *harness {
	t.Helper()

	tokens, err := service.NewLinkTokenGenerator("test-link-secret-0123456789", 10)
	require.NoError(t, err)

	store := newMemStore()
	storage := newMemStorage()
	publisher := &recordingPublisher{}
	logger := zap.NewNop()

	boardRepos := usecase.BoardRepositories{
		Boards:     memBoards{store},
		Members:    memMembers{store},
		Links:      memLinks{store},
		Cards:      memCards{store},
		Activities: memActivities{store},
		Transactor: store,
		Publisher:  publisher,
	}
	folders := usecase.StorageFolders{Board: "board", Card: "card"}

	return &harness{
		store:     store,
		storage:   storage,
		publisher: publisher,
		tokens:    tokens,
		boards:    usecase.NewBoardUsecase(boardRepos, tokens, storage, folders, logger),
		cards:     usecase.NewCardUsecase(boardRepos, storage, folders, logger),
		membership: usecase.NewMembershipUsecase(usecase.MembershipRepositories{
			Boards:     memBoards{store},
			Members:    memMembers{store},
			Links:      memLinks{store},
			Users:      memUsers{store},
			Cards:      memCards{store},
			Activities: memActivities{store},
			Transactor: store,
			Limiter:    limiter,
			Publisher:  publisher,
		}, tokens, testClientURL+"/", logger),
	}
}

// createBoard creates a board owned by userID and returns its id.
func (h *harness) createBoard(t *testing.T, userID, title string) string {
	t.Helper()
	board, err := h.boards.CreateBoard(context.Background(), userID, usecase.CreateBoardInput{Title: title})
	require.NoError(t, err)
	return board.BoardID
}

// currentHash returns the hash of the board's only invite link.
func (h *harness) currentHash(t *testing.T, boardID string) string {
	t.Helper()
	links := h.store.linksOf(boardID)
	require.Len(t, links, 1)
	return links[0].Hashed
}

// hashOf extracts the hash segment from a join URL.
func hashOf(t *testing.T, joinURL string) string {
	t.Helper()
	i := strings.LastIndex(joinURL, "/join/")
	require.NotEqual(t, -1, i, joinURL)
	return joinURL[i+len("/join/"):]
}

// teamID returns the membership id of userID on boardID.
func (h *harness) teamID(t *testing.T, boardID, userID string) string {
	t.Helper()
	m, ok := h.store.membershipOf(boardID, userID)
	require.True(t, ok, "user %s is not a member", userID)
	return m.ID
}
