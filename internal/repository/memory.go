package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"facilitybook/internal/domain"
	"facilitybook/internal/models"
)

// MemoryBookingStore keeps bookings in process. Every read returns copies.
type MemoryBookingStore struct {
	mu       sync.RWMutex
	bookings map[int64]*models.Booking
	nextID   int64
}

func NewMemoryBookingStore() *MemoryBookingStore {
	return &MemoryBookingStore{bookings: make(map[int64]*models.Booking), nextID: 1}
}

// Insert assigns the next ID to booking and stores a copy of it.
func (s *MemoryBookingStore) Insert(ctx context.Context, booking *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	booking.ID = s.nextID
	s.nextID++
	s.bookings[booking.ID] = booking.Clone()
	return nil
}

func (s *MemoryBookingStore) Get(ctx context.Context, id int64) (*models.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.bookings[id]
	if !ok {
		return nil, domain.NotFound("Booking not found.")
	}
	return b.Clone(), nil
}

func (s *MemoryBookingStore) Replace(ctx context.Context, booking *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.bookings[booking.ID]; !ok {
		return domain.NotFound("Booking not found.")
	}
	s.bookings[booking.ID] = booking.Clone()
	return nil
}

// Filter returns matching bookings in creation order.
func (s *MemoryBookingStore) Filter(ctx context.Context, filter models.BookingFilter) ([]*models.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Booking, 0)
	for _, b := range s.bookings {
		if filter.Match(b) {
			out = append(out, b.Clone())
		}
	}
	sortByID(out)
	return out, nil
}

func (s *MemoryBookingStore) All(ctx context.Context) ([]*models.Booking, error) {
	return s.Filter(ctx, models.BookingFilter{})
}

// CascadeCancel cancels every Pending or Approved booking owned by userID and
// returns the cancelled bookings stamped with at. Bookings of other users
// are untouched.
func (s *MemoryBookingStore) CascadeCancel(ctx context.Context, userID int64, reason string, at time.Time) ([]*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cancelled := make([]*models.Booking, 0)
	for _, b := range s.bookings {
		if b.UserID != userID || !b.Status.Active() {
			continue
		}
		b.Status = models.StatusCancelled
		b.CancellationReason = reason
		b.UpdatedAt = at
		b.Version++
		cancelled = append(cancelled, b.Clone())
	}
	sortByID(cancelled)
	return cancelled, nil
}

// Load replaces the collection with bookings and resumes ID assignment
// after the highest loaded ID.
func (s *MemoryBookingStore) Load(ctx context.Context, bookings []*models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.bookings = make(map[int64]*models.Booking, len(bookings))
	s.nextID = 1
	for _, b := range bookings {
		s.bookings[b.ID] = b.Clone()
		if b.ID >= s.nextID {
			s.nextID = b.ID + 1
		}
	}
	return nil
}

func sortByID(bookings []*models.Booking) {
	sort.Slice(bookings, func(i, j int) bool { return bookings[i].ID < bookings[j].ID })
}

// MemoryUserStore keeps user accounts in process.
type MemoryUserStore struct {
	mu     sync.RWMutex
	users  map[int64]*models.User
	nextID int64
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[int64]*models.User), nextID: 1}
}

func (s *MemoryUserStore) Insert(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return domain.Validation("An account with this email already exists.")
		}
	}
	user.ID = s.nextID
	s.nextID++
	s.users[user.ID] = user.Clone()
	return nil
}

func (s *MemoryUserStore) Get(ctx context.Context, id int64) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, domain.NotFound("User not found.")
	}
	return u.Clone(), nil
}

func (s *MemoryUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u.Clone(), nil
		}
	}
	return nil, domain.NotFound("User not found.")
}

func (s *MemoryUserStore) Replace(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; !ok {
		return domain.NotFound("User not found.")
	}
	s.users[user.ID] = user.Clone()
	return nil
}

func (s *MemoryUserStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return domain.NotFound("User not found.")
	}
	delete(s.users, id)
	return nil
}

func (s *MemoryUserStore) ByRole(ctx context.Context, role models.Role) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.User, 0)
	for _, u := range s.users {
		if u.Role == role {
			out = append(out, u.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryUserStore) All(ctx context.Context) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryUserStore) Load(ctx context.Context, users []*models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users = make(map[int64]*models.User, len(users))
	s.nextID = 1
	for _, u := range users {
		s.users[u.ID] = u.Clone()
		if u.ID >= s.nextID {
			s.nextID = u.ID + 1
		}
	}
	return nil
}

// MemoryNotificationStore holds per-user notification feeds, oldest first.
type MemoryNotificationStore struct {
	mu    sync.RWMutex
	feeds map[int64][]*models.Notification
}

func NewMemoryNotificationStore() *MemoryNotificationStore {
	return &MemoryNotificationStore{feeds: make(map[int64][]*models.Notification)}
}

func (s *MemoryNotificationStore) Append(ctx context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := *n
	s.feeds[n.UserID] = append(s.feeds[n.UserID], &c)
	return nil
}

func (s *MemoryNotificationStore) ForUser(ctx context.Context, userID int64, unreadOnly bool) ([]*models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Notification, 0)
	for _, n := range s.feeds[userID] {
		if unreadOnly && n.Read {
			continue
		}
		c := *n
		out = append(out, &c)
	}
	return out, nil
}

// MarkAllRead flags every unread notice of userID as read and returns how
// many changed.
func (s *MemoryNotificationStore) MarkAllRead(ctx context.Context, userID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := 0
	for _, n := range s.feeds[userID] {
		if !n.Read {
			n.Read = true
			changed++
		}
	}
	return changed, nil
}
