// Package memory is an in-process implementation of storage.Store.
// It backs the test suites and STORAGE_DRIVER=memory for local development without MongoDB.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/AnshRaj112/researchhive-backend/internal/models"
	"github.com/AnshRaj112/researchhive-backend/internal/storage"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var _ storage.Store = (*Store)(nil)

type Store struct {
	mu            sync.RWMutex
	users         map[primitive.ObjectID]models.User
	posts         map[primitive.ObjectID]models.ForumPost
	connections   map[primitive.ObjectID]models.Connection
	notifications map[primitive.ObjectID]models.Notification
	bookmarks     map[primitive.ObjectID]models.Bookmark
	items         map[primitive.ObjectID]models.RepositoryItem
	events        map[primitive.ObjectID]models.Event
	projects      map[primitive.ObjectID]models.Project
}

func New() *Store {
	return &Store{
		users:         make(map[primitive.ObjectID]models.User),
		posts:         make(map[primitive.ObjectID]models.ForumPost),
		connections:   make(map[primitive.ObjectID]models.Connection),
		notifications: make(map[primitive.ObjectID]models.Notification),
		bookmarks:     make(map[primitive.ObjectID]models.Bookmark),
		items:         make(map[primitive.ObjectID]models.RepositoryItem),
		events:        make(map[primitive.ObjectID]models.Event),
		projects:      make(map[primitive.ObjectID]models.Project),
	}
}

func (s *Store) Ping(context.Context) error  { return nil }
func (s *Store) Close(context.Context) error { return nil }

// stamp fills the id and creation time the way the mongo store does on insert.
func stamp(id *primitive.ObjectID, createdAt *time.Time) {
	if id.IsZero() {
		*id = primitive.NewObjectID()
	}
	if createdAt.IsZero() {
		*createdAt = time.Now().UTC()
	}
}

// newestFirst sorts by created_at descending, breaking ties on the (monotonic) object id.
func newestFirst[T any](list []T, key func(T) (time.Time, primitive.ObjectID)) {
	sort.SliceStable(list, func(i, j int) bool {
		ti, idi := key(list[i])
		tj, idj := key(list[j])
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return idi.Hex() > idj.Hex()
	})
}

func paginate[T any](list []T, page storage.Page) []T {
	if page.Skip > 0 {
		if page.Skip >= int64(len(list)) {
			return []T{}
		}
		list = list[page.Skip:]
	}
	if page.Limit > 0 && int64(len(list)) > page.Limit {
		list = list[:page.Limit]
	}
	return list
}

func cloneIDs(ids []primitive.ObjectID) []primitive.ObjectID {
	out := make([]primitive.ObjectID, len(ids))
	copy(out, ids)
	return out
}

// ---- users ----

func (s *Store) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Username, user.Username) || strings.EqualFold(u.Email, user.Email) {
			return storage.ErrDuplicate
		}
	}
	stamp(&user.ID, &user.CreatedAt)
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = user.CreatedAt
	}
	s.users[user.ID] = *user
	return nil
}

func (s *Store) GetUser(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &u, nil
}

func (s *Store) findUser(match func(models.User) bool) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if match(u) {
			return &u, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	return s.findUser(func(u models.User) bool { return strings.EqualFold(u.Email, email) })
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	return s.findUser(func(u models.User) bool { return strings.EqualFold(u.Username, username) })
}

func (s *Store) GetUsers(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *Store) sortedUsers(match func(models.User) bool) []models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.User{}
	for _, u := range s.users {
		if match(u) {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out
}

func (s *Store) SearchUsers(_ context.Context, username string, limit int64) ([]models.User, error) {
	q := strings.ToLower(username)
	out := s.sortedUsers(func(u models.User) bool { return strings.Contains(strings.ToLower(u.Username), q) })
	return paginate(out, storage.Page{Limit: limit}), nil
}

func (s *Store) ListUsers(_ context.Context, page storage.Page) ([]models.User, error) {
	return paginate(s.sortedUsers(func(models.User) bool { return true }), page), nil
}

func (s *Store) UpdateProfile(_ context.Context, id primitive.ObjectID, update models.ProfileUpdate) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	update.Apply(&u)
	u.UpdatedAt = time.Now().UTC()
	s.users[id] = u
	return &u, nil
}

func (s *Store) UpdatePasswordHash(_ context.Context, id primitive.ObjectID, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return storage.ErrNotFound
	}
	u.Password = hash
	s.users[id] = u
	return nil
}

func (s *Store) DeleteUser(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

// ---- forum ----

func clonePost(p models.ForumPost) models.ForumPost {
	p.Likes = cloneIDs(p.Likes)
	p.Comments = append([]models.Comment{}, p.Comments...)
	return p
}

func (s *Store) CreatePost(_ context.Context, post *models.ForumPost) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stamp(&post.ID, &post.CreatedAt)
	if post.Likes == nil {
		post.Likes = []primitive.ObjectID{}
	}
	if post.Comments == nil {
		post.Comments = []models.Comment{}
	}
	s.posts[post.ID] = clonePost(*post)
	return nil
}

func (s *Store) GetPost(_ context.Context, id primitive.ObjectID) (*models.ForumPost, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.posts[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	p = clonePost(p)
	return &p, nil
}

func (s *Store) ListPosts(_ context.Context, filter storage.ForumFilter, page storage.Page) ([]models.ForumPost, error) {
	s.mu.RLock()
	out := []models.ForumPost{}
	for _, p := range s.posts {
		if filter.Type != "" && p.Type != filter.Type {
			continue
		}
		if !filter.Author.IsZero() && p.Author != filter.Author {
			continue
		}
		out = append(out, clonePost(p))
	}
	s.mu.RUnlock()
	newestFirst(out, func(p models.ForumPost) (time.Time, primitive.ObjectID) { return p.CreatedAt, p.ID })
	return paginate(out, page), nil
}

func (s *Store) ToggleLike(_ context.Context, postID, userID primitive.ObjectID) (*models.ForumPost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[postID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	p = clonePost(p)
	if p.LikedBy(userID) {
		p.Likes = models.RemoveID(p.Likes, userID)
	} else {
		p.Likes = append(p.Likes, userID)
	}
	s.posts[postID] = p
	out := clonePost(p)
	return &out, nil
}

func (s *Store) AddComment(_ context.Context, postID primitive.ObjectID, comment models.Comment) (*models.ForumPost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[postID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	stamp(&comment.ID, &comment.CreatedAt)
	p = clonePost(p)
	p.Comments = append(p.Comments, comment)
	s.posts[postID] = p
	out := clonePost(p)
	return &out, nil
}

func (s *Store) DeletePost(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.posts, id)
	return nil
}

// ---- connections ----

func (s *Store) CreateConnection(_ context.Context, conn *models.Connection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stamp(&conn.ID, &conn.CreatedAt)
	if conn.UpdatedAt.IsZero() {
		conn.UpdatedAt = conn.CreatedAt
	}
	if conn.Status == "" {
		conn.Status = models.ConnectionPending
	}
	s.connections[conn.ID] = *conn
	return nil
}

func (s *Store) GetConnection(_ context.Context, id primitive.ObjectID) (*models.Connection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.connections[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &c, nil
}

func (s *Store) FindConnectionBetween(_ context.Context, a, b primitive.ObjectID) (*models.Connection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.connections {
		if (c.Requester == a && c.Recipient == b) || (c.Requester == b && c.Recipient == a) {
			return &c, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *Store) SetConnectionStatus(_ context.Context, id primitive.ObjectID, status models.ConnectionStatus) (*models.Connection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.connections[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	c.Status = status
	c.UpdatedAt = time.Now().UTC()
	s.connections[id] = c
	return &c, nil
}

func (s *Store) ListConnections(_ context.Context, userID primitive.ObjectID) ([]models.Connection, error) {
	s.mu.RLock()
	out := []models.Connection{}
	for _, c := range s.connections {
		if c.Involves(userID) {
			out = append(out, c)
		}
	}
	s.mu.RUnlock()
	newestFirst(out, func(c models.Connection) (time.Time, primitive.ObjectID) { return c.CreatedAt, c.ID })
	return out, nil
}

func (s *Store) DeleteConnection(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.connections[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.connections, id)
	return nil
}

// ---- notifications ----

func (s *Store) CreateNotification(_ context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stamp(&n.ID, &n.CreatedAt)
	s.notifications[n.ID] = *n
	return nil
}

func (s *Store) GetNotification(_ context.Context, id primitive.ObjectID) (*models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.notifications[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &n, nil
}

func (s *Store) ListNotifications(_ context.Context, userID primitive.ObjectID, unreadOnly bool, page storage.Page) ([]models.Notification, error) {
	s.mu.RLock()
	out := []models.Notification{}
	for _, n := range s.notifications {
		if n.User != userID || (unreadOnly && n.Read) {
			continue
		}
		out = append(out, n)
	}
	s.mu.RUnlock()
	newestFirst(out, func(n models.Notification) (time.Time, primitive.ObjectID) { return n.CreatedAt, n.ID })
	return paginate(out, page), nil
}

func (s *Store) MarkNotificationRead(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notifications[id]
	if !ok {
		return storage.ErrNotFound
	}
	n.Read = true
	s.notifications[id] = n
	return nil
}

func (s *Store) MarkAllNotificationsRead(_ context.Context, userID primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var updated int64
	for id, n := range s.notifications {
		if n.User == userID && !n.Read {
			n.Read = true
			s.notifications[id] = n
			updated++
		}
	}
	return updated, nil
}

// ---- bookmarks ----

func (s *Store) CreateBookmark(_ context.Context, b *models.Bookmark) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.bookmarks {
		if existing.User == b.User && existing.Type == b.Type && existing.Item == b.Item {
			return storage.ErrDuplicate
		}
	}
	stamp(&b.ID, &b.CreatedAt)
	s.bookmarks[b.ID] = *b
	return nil
}

func (s *Store) GetBookmark(_ context.Context, id primitive.ObjectID) (*models.Bookmark, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bookmarks[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &b, nil
}

func (s *Store) ListBookmarks(_ context.Context, userID primitive.ObjectID, typ models.BookmarkType) ([]models.Bookmark, error) {
	s.mu.RLock()
	out := []models.Bookmark{}
	for _, b := range s.bookmarks {
		if b.User == userID && (typ == "" || b.Type == typ) {
			out = append(out, b)
		}
	}
	s.mu.RUnlock()
	newestFirst(out, func(b models.Bookmark) (time.Time, primitive.ObjectID) { return b.CreatedAt, b.ID })
	return out, nil
}

func (s *Store) DeleteBookmark(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bookmarks[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.bookmarks, id)
	return nil
}

// ---- repository ----

func (s *Store) CreateItem(_ context.Context, item *models.RepositoryItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stamp(&item.ID, &item.CreatedAt)
	if item.Tags == nil {
		item.Tags = []string{}
	}
	s.items[item.ID] = *item
	return nil
}

func (s *Store) GetItem(_ context.Context, id primitive.ObjectID) (*models.RepositoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	it, ok := s.items[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &it, nil
}

func itemMatches(it models.RepositoryItem, q string) bool {
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(it.Title), q) || strings.Contains(strings.ToLower(it.Description), q) {
		return true
	}
	for _, t := range it.Tags {
		if strings.Contains(strings.ToLower(t), q) {
			return true
		}
	}
	return false
}

func (s *Store) ListItems(_ context.Context, query string, page storage.Page) ([]models.RepositoryItem, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	s.mu.RLock()
	out := []models.RepositoryItem{}
	for _, it := range s.items {
		if itemMatches(it, q) {
			out = append(out, it)
		}
	}
	s.mu.RUnlock()
	newestFirst(out, func(it models.RepositoryItem) (time.Time, primitive.ObjectID) { return it.CreatedAt, it.ID })
	return paginate(out, page), nil
}

func (s *Store) DeleteItem(_ context.Context, id primitive.ObjectID) (*models.RepositoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	delete(s.items, id)
	return &it, nil
}

// ---- events ----

func cloneEvent(e models.Event) models.Event {
	e.Participants = cloneIDs(e.Participants)
	e.Invited = cloneIDs(e.Invited)
	return e
}

func (s *Store) CreateEvent(_ context.Context, e *models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stamp(&e.ID, &e.CreatedAt)
	if e.Participants == nil {
		e.Participants = []primitive.ObjectID{}
	}
	if e.Invited == nil {
		e.Invited = []primitive.ObjectID{}
	}
	s.events[e.ID] = cloneEvent(*e)
	return nil
}

func (s *Store) GetEvent(_ context.Context, id primitive.ObjectID) (*models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.events[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	e = cloneEvent(e)
	return &e, nil
}

func (s *Store) listEvents(match func(models.Event) bool) []models.Event {
	s.mu.RLock()
	out := []models.Event{}
	for _, e := range s.events {
		if match(e) {
			out = append(out, cloneEvent(e))
		}
	}
	s.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}

func (s *Store) ListEvents(_ context.Context, page storage.Page) ([]models.Event, error) {
	return paginate(s.listEvents(func(models.Event) bool { return true }), page), nil
}

func (s *Store) ListEventsForUser(_ context.Context, userID primitive.ObjectID) ([]models.Event, error) {
	return s.listEvents(func(e models.Event) bool {
		return e.CreatedBy == userID || models.ContainsID(e.Participants, userID) || models.ContainsID(e.Invited, userID)
	}), nil
}

func (s *Store) ListEventInvites(_ context.Context, userID primitive.ObjectID) ([]models.Event, error) {
	return s.listEvents(func(e models.Event) bool { return models.ContainsID(e.Invited, userID) }), nil
}

func applyMembership(lists map[string]*[]primitive.ObjectID, change models.MembershipChange) {
	for _, field := range change.RemoveFrom {
		if l, ok := lists[field]; ok {
			*l = models.RemoveID(*l, change.UserID)
		}
	}
	for _, field := range change.AddTo {
		if l, ok := lists[field]; ok {
			*l = models.AddID(*l, change.UserID)
		}
	}
}

func (s *Store) UpdateEventMembership(_ context.Context, id primitive.ObjectID, change models.MembershipChange) (*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	e = cloneEvent(e)
	applyMembership(map[string]*[]primitive.ObjectID{
		models.FieldParticipants: &e.Participants,
		models.FieldInvited:      &e.Invited,
	}, change)
	s.events[id] = e
	out := cloneEvent(e)
	return &out, nil
}

func (s *Store) DeleteEvent(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.events, id)
	return nil
}

// ---- projects ----

func cloneProject(p models.Project) models.Project {
	p.Collaborators = cloneIDs(p.Collaborators)
	p.Invited = cloneIDs(p.Invited)
	return p
}

func (s *Store) CreateProject(_ context.Context, p *models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stamp(&p.ID, &p.CreatedAt)
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}
	if p.Invited == nil {
		p.Invited = []primitive.ObjectID{}
	}
	s.projects[p.ID] = cloneProject(*p)
	return nil
}

func (s *Store) GetProject(_ context.Context, id primitive.ObjectID) (*models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.projects[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	p = cloneProject(p)
	return &p, nil
}

func (s *Store) ListProjectsForUser(_ context.Context, userID primitive.ObjectID) ([]models.Project, error) {
	s.mu.RLock()
	out := []models.Project{}
	for _, p := range s.projects {
		if p.Owner == userID || models.ContainsID(p.Collaborators, userID) || models.ContainsID(p.Invited, userID) {
			out = append(out, cloneProject(p))
		}
	}
	s.mu.RUnlock()
	newestFirst(out, func(p models.Project) (time.Time, primitive.ObjectID) { return p.CreatedAt, p.ID })
	return out, nil
}

func (s *Store) UpdateProject(_ context.Context, id primitive.ObjectID, title, description string) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	p = cloneProject(p)
	p.Title = title
	p.Description = description
	p.UpdatedAt = time.Now().UTC()
	s.projects[id] = p
	out := cloneProject(p)
	return &out, nil
}

func (s *Store) UpdateProjectMembership(_ context.Context, id primitive.ObjectID, change models.MembershipChange) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	p = cloneProject(p)
	applyMembership(map[string]*[]primitive.ObjectID{
		models.FieldCollaborators: &p.Collaborators,
		models.FieldInvited:       &p.Invited,
	}, change)
	p.UpdatedAt = time.Now().UTC()
	s.projects[id] = p
	out := cloneProject(p)
	return &out, nil
}

func (s *Store) DeleteProject(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.projects, id)
	return nil
}
