package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/wekeepgrowing/board-server/internal/domain/entity"
	"github.com/wekeepgrowing/board-server/internal/domain/model"
	"github.com/wekeepgrowing/board-server/internal/domain/repository"
)

// memStore is an in-memory implementation of every repository used by the
// usecases. WithinTransaction snapshots the state and restores it when fn fails.
type memStore struct {
	mu sync.Mutex

	users       map[string]model.User
	boards      map[string]model.Board
	members     map[string]model.Membership
	links       []model.InviteLink
	cards       map[string]model.Card
	tasks       map[string]model.Task
	cardMembers map[string]model.CardMember
	activities  []model.BoardActivity

	clock  time.Time
	nextID uint64

	// failOn makes the named operation return errBoom.
	failOn string
}

var errBoom = errors.New("boom")

func newMemStore() *memStore {
	return &memStore{
		users:       map[string]model.User{},
		boards:      map[string]model.Board{},
		members:     map[string]model.Membership{},
		cards:       map[string]model.Card{},
		tasks:       map[string]model.Task{},
		cardMembers: map[string]model.CardMember{},
		clock:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (s *memStore) now() time.Time {
	s.clock = s.clock.Add(time.Millisecond)
	return s.clock
}

func (s *memStore) fail(op string) error {
	if s.failOn == op {
		return errBoom
	}
	return nil
}

type memSnapshot struct {
	users       map[string]model.User
	boards      map[string]model.Board
	members     map[string]model.Membership
	links       []model.InviteLink
	cards       map[string]model.Card
	tasks       map[string]model.Task
	cardMembers map[string]model.CardMember
	activities  []model.BoardActivity
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *memStore) snapshot() memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memSnapshot{
		users:       copyMap(s.users),
		boards:      copyMap(s.boards),
		members:     copyMap(s.members),
		links:       append([]model.InviteLink(nil), s.links...),
		cards:       copyMap(s.cards),
		tasks:       copyMap(s.tasks),
		cardMembers: copyMap(s.cardMembers),
		activities:  append([]model.BoardActivity(nil), s.activities...),
	}
}

func (s *memStore) restore(snap memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = snap.users
	s.boards = snap.boards
	s.members = snap.members
	s.links = snap.links
	s.cards = snap.cards
	s.tasks = snap.tasks
	s.cardMembers = snap.cardMembers
	s.activities = snap.activities
}

type txMarker struct{}

func (s *memStore) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txMarker{}) != nil {
		return fn(ctx)
	}
	snap := s.snapshot()
	if err := fn(context.WithValue(ctx, txMarker{}, true)); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// helpers for assertions

func (s *memStore) addUser(id, username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[id] = model.User{ID: id, Username: username, Name: username}
}

func (s *memStore) membershipsOf(boardID string) []model.Membership {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Membership
	for _, m := range s.members {
		if m.BoardID == boardID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (s *memStore) membershipOf(boardID, userID string) (model.Membership, bool) {
	for _, m := range s.membershipsOf(boardID) {
		if m.UserID == userID {
			return m, true
		}
	}
	return model.Membership{}, false
}

func (s *memStore) ownerCount(boardID string) int {
	n := 0
	for _, m := range s.membershipsOf(boardID) {
		if m.Role == model.RoleOwner {
			n++
		}
	}
	return n
}

func (s *memStore) linksOf(boardID string) []model.InviteLink {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.InviteLink
	for _, l := range s.links {
		if l.BoardID == boardID {
			out = append(out, l)
		}
	}
	return out
}

func (s *memStore) actionsOf(boardID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, a := range s.activities {
		if a.BoardID == boardID {
			out = append(out, a.Action)
		}
	}
	return out
}

// users

type memUsers struct{ s *memStore }

func (r memUsers) GetByID(_ context.Context, id string) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r memUsers) GetByUsername(_ context.Context, username string) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == username {
			u := u
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r memUsers) Upsert(_ context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, u := range r.s.users {
		if u.Username == user.Username && id != user.ID {
			return repository.ErrDuplicate
		}
	}
	r.s.users[user.ID] = *user
	return nil
}

// boards

type memBoards struct{ s *memStore }

func (r memBoards) Create(_ context.Context, board *model.Board) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("boards.Create"); err != nil {
		return err
	}
	if _, ok := r.s.boards[board.ID]; ok {
		return repository.ErrDuplicate
	}
	board.CreatedAt = r.s.now()
	board.UpdatedAt = board.CreatedAt
	r.s.boards[board.ID] = *board
	return nil
}

func (r memBoards) GetByID(_ context.Context, id string) (*model.Board, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.boards[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &b, nil
}

func (r memBoards) ListForUser(_ context.Context, userID string, query entity.BoardQuery) ([]*model.Board, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*model.Board
	for _, m := range r.s.members {
		if m.UserID != userID {
			continue
		}
		b := r.s.boards[m.BoardID]
		if query.Search != "" && !strings.Contains(strings.ToLower(b.Title), strings.ToLower(query.Search)) {
			continue
		}
		out = append(out, &b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return page(out, query.PaginationParams), int64(len(out)), nil
}

func (r memBoards) Update(_ context.Context, id string, update model.BoardUpdate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.boards[id]
	if !ok {
		return repository.ErrNotFound
	}
	if update.Title != nil {
		b.Title = *update.Title
	}
	if update.Cover != nil {
		cover := *update.Cover
		b.Cover = &cover
	}
	b.UpdatedAt = r.s.now()
	r.s.boards[id] = b
	return nil
}

func (r memBoards) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.boards[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.boards, id)
	return nil
}

// memberships

type memMembers struct{ s *memStore }

func (r memMembers) Create(_ context.Context, m *model.Membership) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("members.Create"); err != nil {
		return err
	}
	for _, existing := range r.s.members {
		if existing.BoardID == m.BoardID && existing.UserID == m.UserID {
			return repository.ErrDuplicate
		}
	}
	m.CreatedAt = r.s.now()
	m.UpdatedAt = m.CreatedAt
	stored := *m
	stored.User = nil
	r.s.members[m.ID] = stored
	return nil
}

func (r memMembers) withUser(m model.Membership) *model.Membership {
	if u, ok := r.s.users[m.UserID]; ok {
		m.User = &u
	}
	return &m
}

func (r memMembers) GetByID(_ context.Context, teamID string) (*model.Membership, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.members[teamID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.withUser(m), nil
}

func (r memMembers) GetByBoardAndUser(_ context.Context, boardID, userID string) (*model.Membership, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range r.s.members {
		if m.BoardID == boardID && m.UserID == userID {
			m := m
			return &m, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r memMembers) GetOwner(_ context.Context, boardID string) (*model.Membership, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range r.s.members {
		if m.BoardID == boardID && m.Role == model.RoleOwner {
			m := m
			return &m, nil
		}
	}
	return nil, repository.ErrNotFound
}

func roleRank(r model.Role) int {
	switch r {
	case model.RoleOwner:
		return 0
	case model.RoleAdmin:
		return 1
	}
	return 2
}

func (r memMembers) roster(boardID, prefix string) []*model.Membership {
	var out []*model.Membership
	for _, m := range r.s.members {
		if m.BoardID != boardID {
			continue
		}
		full := r.withUser(m)
		if prefix != "" && (full.User == nil || !strings.HasPrefix(strings.ToLower(full.User.Username), strings.ToLower(prefix))) {
			continue
		}
		out = append(out, full)
	}
	sort.Slice(out, func(i, j int) bool {
		if roleRank(out[i].Role) != roleRank(out[j].Role) {
			return roleRank(out[i].Role) < roleRank(out[j].Role)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (r memMembers) ListByBoard(_ context.Context, boardID string, query entity.TeamQuery) ([]*model.Membership, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	all := r.roster(boardID, query.Search)
	return page(all, query.PaginationParams), int64(len(all)), nil
}

func (r memMembers) ListAllByBoard(_ context.Context, boardID string) ([]*model.Membership, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.roster(boardID, ""), nil
}

func (r memMembers) CountByRole(_ context.Context, boardID string, role model.Role) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, m := range r.s.members {
		if m.BoardID == boardID && m.Role == role {
			n++
		}
	}
	return n, nil
}

func (r memMembers) UpdateRole(_ context.Context, teamID string, role model.Role, permission model.Permission) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("members.UpdateRole:" + string(role)); err != nil {
		return err
	}
	m, ok := r.s.members[teamID]
	if !ok {
		return repository.ErrNotFound
	}
	// mirrors the partial unique index on (board_id) WHERE role = 'OWNER'
	if role == model.RoleOwner {
		for id, other := range r.s.members {
			if id != teamID && other.BoardID == m.BoardID && other.Role == model.RoleOwner {
				return repository.ErrDuplicate
			}
		}
	}
	m.Role, m.Permission = role, permission
	r.s.members[teamID] = m
	return nil
}

func (r memMembers) Delete(_ context.Context, teamID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.members[teamID]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.members, teamID)
	return nil
}

func (r memMembers) DeleteByBoard(_ context.Context, boardID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, m := range r.s.members {
		if m.BoardID == boardID {
			delete(r.s.members, id)
		}
	}
	return nil
}

// invite links

type memLinks struct{ s *memStore }

func (r memLinks) Create(_ context.Context, link *model.InviteLink) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, l := range r.s.links {
		if l.BoardID == link.BoardID && l.Code == link.Code {
			return repository.ErrDuplicate
		}
	}
	link.CreatedAt = r.s.now()
	r.s.links = append(r.s.links, *link)
	return nil
}

func (r memLinks) GetLatest(_ context.Context, boardID string) (*model.InviteLink, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var latest *model.InviteLink
	for i := range r.s.links {
		l := r.s.links[i]
		if l.BoardID == boardID && (latest == nil || l.CreatedAt.After(latest.CreatedAt)) {
			latest = &l
		}
	}
	if latest == nil {
		return nil, repository.ErrNotFound
	}
	return latest, nil
}

func (r memLinks) ExistsCode(_ context.Context, boardID, code string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, l := range r.s.links {
		if l.BoardID == boardID && l.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (r memLinks) DeleteOthers(_ context.Context, boardID, keepCode string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var kept []model.InviteLink
	var n int64
	for _, l := range r.s.links {
		if l.BoardID == boardID && l.Code != keepCode {
			n++
			continue
		}
		kept = append(kept, l)
	}
	r.s.links = kept
	return n, nil
}

func (r memLinks) DeleteByBoard(ctx context.Context, boardID string) error {
	_, err := r.DeleteOthers(ctx, boardID, "")
	return err
}

// cards

type memCards struct{ s *memStore }

func (r memCards) Create(_ context.Context, card *model.Card) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	card.CreatedAt = r.s.now()
	card.UpdatedAt = card.CreatedAt
	stored := *card
	stored.Tasks, stored.Members = nil, nil
	r.s.cards[card.ID] = stored
	return nil
}

func (r memCards) assemble(c model.Card) *model.Card {
	c.Tasks, c.Members = nil, nil
	for _, t := range r.s.tasks {
		if t.CardID == c.ID {
			c.Tasks = append(c.Tasks, t)
		}
	}
	sort.Slice(c.Tasks, func(i, j int) bool { return c.Tasks[i].Position < c.Tasks[j].Position })
	for _, cm := range r.s.cardMembers {
		if cm.CardID != c.ID {
			continue
		}
		if m, ok := r.s.members[cm.TeamID]; ok {
			cm.Membership = memMembers{r.s}.withUser(m)
		}
		c.Members = append(c.Members, cm)
	}
	sort.Slice(c.Members, func(i, j int) bool { return c.Members[i].CreatedAt.Before(c.Members[j].CreatedAt) })
	return &c
}

func (r memCards) GetByID(_ context.Context, boardID, cardID string) (*model.Card, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.cards[cardID]
	if !ok || c.BoardID != boardID {
		return nil, repository.ErrNotFound
	}
	return r.assemble(c), nil
}

func (r memCards) ListByBoard(_ context.Context, boardID string) ([]*model.Card, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*model.Card
	for _, c := range r.s.cards {
		if c.BoardID == boardID {
			out = append(out, r.assemble(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r memCards) Update(_ context.Context, card *model.Card) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.cards[card.ID]; !ok {
		return repository.ErrNotFound
	}
	stored := *card
	stored.Tasks, stored.Members = nil, nil
	stored.UpdatedAt = r.s.now()
	r.s.cards[card.ID] = stored
	return nil
}

func (r memCards) Delete(_ context.Context, cardID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.cards[cardID]; !ok {
		return repository.ErrNotFound
	}
	r.deleteCardLocked(cardID)
	return nil
}

func (r memCards) deleteCardLocked(cardID string) {
	for id, t := range r.s.tasks {
		if t.CardID == cardID {
			delete(r.s.tasks, id)
		}
	}
	for id, cm := range r.s.cardMembers {
		if cm.CardID == cardID {
			delete(r.s.cardMembers, id)
		}
	}
	delete(r.s.cards, cardID)
}

func (r memCards) DeleteByBoard(_ context.Context, boardID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, c := range r.s.cards {
		if c.BoardID == boardID {
			r.deleteCardLocked(id)
		}
	}
	return nil
}

func (r memCards) CreateTasks(_ context.Context, tasks []*model.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range tasks {
		t.CreatedAt = r.s.now()
		r.s.tasks[t.ID] = *t
	}
	return nil
}

func (r memCards) UpdateTask(_ context.Context, task *model.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tasks[task.ID]
	if !ok || t.CardID != task.CardID {
		return nil
	}
	t.Task, t.IsDone, t.Position = task.Task, task.IsDone, task.Position
	r.s.tasks[task.ID] = t
	return nil
}

func (r memCards) DeleteTasks(_ context.Context, cardID string, ids []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, id := range ids {
		if t, ok := r.s.tasks[id]; ok && t.CardID == cardID {
			delete(r.s.tasks, id)
		}
	}
	return nil
}

func (r memCards) CreateMembers(_ context.Context, members []*model.CardMember) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range members {
		for _, existing := range r.s.cardMembers {
			if existing.CardID == m.CardID && existing.TeamID == m.TeamID {
				return repository.ErrDuplicate
			}
		}
		m.CreatedAt = r.s.now()
		stored := *m
		stored.Membership = nil
		r.s.cardMembers[m.ID] = stored
	}
	return nil
}

func (r memCards) UpdateMember(_ context.Context, member *model.CardMember) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cm, ok := r.s.cardMembers[member.ID]
	if !ok {
		return nil
	}
	cm.TeamID = member.TeamID
	r.s.cardMembers[member.ID] = cm
	return nil
}

func (r memCards) DeleteMembers(_ context.Context, cardID string, ids []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, id := range ids {
		if cm, ok := r.s.cardMembers[id]; ok && cm.CardID == cardID {
			delete(r.s.cardMembers, id)
		}
	}
	return nil
}

func (r memCards) DeleteMembersByTeam(_ context.Context, teamID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, cm := range r.s.cardMembers {
		if cm.TeamID == teamID {
			delete(r.s.cardMembers, id)
		}
	}
	return nil
}

// activities

type memActivities struct{ s *memStore }

func (r memActivities) Create(_ context.Context, a *model.BoardActivity) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextID++
	a.ID = r.s.nextID
	a.CreatedAt = r.s.now()
	r.s.activities = append(r.s.activities, *a)
	return nil
}

func (r memActivities) ListByBoard(_ context.Context, boardID string, p entity.PaginationParams) ([]*model.BoardActivity, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*model.BoardActivity
	for i := len(r.s.activities) - 1; i >= 0; i-- {
		a := r.s.activities[i]
		if a.BoardID == boardID {
			out = append(out, &a)
		}
	}
	return page(out, p), int64(len(out)), nil
}

func (r memActivities) DeleteByBoard(_ context.Context, boardID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var kept []model.BoardActivity
	for _, a := range r.s.activities {
		if a.BoardID != boardID {
			kept = append(kept, a)
		}
	}
	r.s.activities = kept
	return nil
}

func page[T any](items []T, p entity.PaginationParams) []T {
	start := p.Offset()
	if start >= len(items) {
		return nil
	}
	end := start + p.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// collaborators

type memStorage struct {
	mu         sync.Mutex
	objects    map[string]bool
	failUpload bool
	seq        int
}

func newMemStorage() *memStorage {
	return &memStorage{objects: map[string]bool{}}
}

func (m *memStorage) Upload(_ context.Context, file *repository.Upload, folder string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failUpload {
		return "", errBoom
	}
	if _, err := io.ReadAll(file.Body); err != nil {
		return "", err
	}
	m.seq++
	name := fmt.Sprintf("%d-%s", m.seq, file.Filename)
	m.objects[folder+"/"+name] = true
	return name, nil
}

func (m *memStorage) Delete(_ context.Context, filename, folder string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, folder+"/"+filename)
	return nil
}

func (m *memStorage) URL(_ context.Context, filename, folder string) string {
	return "https://cdn.test/" + folder + "/" + filename
}

func (m *memStorage) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

type recordingPublisher struct {
	mu       sync.Mutex
	channels []string
}

func (p *recordingPublisher) Publish(_ context.Context, channel string, _ interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.channels = append(p.channels, channel)
	return nil
}

type fixedLimiter struct {
	allowed bool
	err     error
}

func (l fixedLimiter) Allow(context.Context, string) (bool, error) {
	return l.allowed, l.err
}
