// Package mock provides in-memory implementations of database interfaces for testing.
package mock

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kozaktomas/adproof/internal/canvas"
	"github.com/kozaktomas/adproof/internal/database"
)

func newID() string {
	return uuid.New().String()
}

// MockCatalogStore is a mock implementation of database.CatalogStore
type MockCatalogStore struct {
	mu           sync.RWMutex
	clients      []database.Client
	publications []database.Publication
	issues       []database.PublicationIssue
	adSizes      []database.AdSize

	// Error injection
	ListError   error
	GetError    error
	CreateError error
}

// NewMockCatalogStore creates a new mock catalog store
func NewMockCatalogStore() *MockCatalogStore {
	return &MockCatalogStore{}
}

// AddPublication adds a publication to the mock store
func (m *MockCatalogStore) AddPublication(pub database.Publication) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.publications = append(m.publications, pub)
}

func (m *MockCatalogStore) ListClients(ctx context.Context) ([]database.Client, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.clients), nil
}

func (m *MockCatalogStore) GetClient(ctx context.Context, id string) (*database.Client, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.clients {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, nil
}

func (m *MockCatalogStore) CreateClient(ctx context.Context, client *database.Client) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if client.ID == "" {
		client.ID = newID()
	}
	client.CreatedAt = time.Now()
	client.UpdatedAt = client.CreatedAt
	m.clients = append(m.clients, *client)
	return nil
}

func (m *MockCatalogStore) ListPublications(ctx context.Context) ([]database.Publication, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.publications), nil
}

func (m *MockCatalogStore) GetPublication(ctx context.Context, id string) (*database.Publication, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.publications {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, nil
}

func (m *MockCatalogStore) CreatePublication(ctx context.Context, pub *database.Publication) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if pub.ID == "" {
		pub.ID = newID()
	}
	pub.CreatedAt = time.Now()
	pub.UpdatedAt = pub.CreatedAt
	m.publications = append(m.publications, *pub)
	return nil
}

func (m *MockCatalogStore) ListPublicationIssues(ctx context.Context, publicationID string) ([]database.PublicationIssue, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []database.PublicationIssue
	for _, i := range m.issues {
		if i.PublicationID == publicationID {
			out = append(out, i)
		}
	}
	slices.SortFunc(out, func(a, b database.PublicationIssue) int { return a.IssueDate.Compare(b.IssueDate) })
	return out, nil
}

func (m *MockCatalogStore) CreatePublicationIssue(ctx context.Context, issue *database.PublicationIssue) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if issue.ID == "" {
		issue.ID = newID()
	}
	issue.CreatedAt = time.Now()
	m.issues = append(m.issues, *issue)
	return nil
}

func (m *MockCatalogStore) ListAdSizes(ctx context.Context) ([]database.AdSize, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.adSizes), nil
}

func (m *MockCatalogStore) GetAdSize(ctx context.Context, id string) (*database.AdSize, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.adSizes {
		if s.ID == id {
			return &s, nil
		}
	}
	return nil, nil
}

func (m *MockCatalogStore) UpsertAdSize(ctx context.Context, size *database.AdSize) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, s := range m.adSizes {
		if s.SizeID == size.SizeID {
			size.ID = s.ID
			size.CreatedAt = s.CreatedAt
			m.adSizes[i] = *size
			return nil
		}
	}
	if size.ID == "" {
		size.ID = newID()
	}
	size.CreatedAt = time.Now()
	m.adSizes = append(m.adSizes, *size)
	return nil
}

// MockAdStore is a mock implementation of database.AdStore
type MockAdStore struct {
	mu     sync.RWMutex
	ads    []database.Ad
	assets []database.Asset

	// Error injection
	ListError   error
	GetError    error
	CreateError error
	UpdateError error
}

// NewMockAdStore creates a new mock ad store
func NewMockAdStore() *MockAdStore {
	return &MockAdStore{}
}

// AddAd adds an ad to the mock store
func (m *MockAdStore) AddAd(ad database.Ad) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ads = append(m.ads, ad)
}

// Ad returns a copy of the stored ad, or nil
func (m *MockAdStore) Ad(id string) *database.Ad {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.ads {
		if a.ID == id {
			return &a
		}
	}
	return nil
}

func (m *MockAdStore) ListAds(ctx context.Context, filter database.AdFilter) ([]database.Ad, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []database.Ad
	for i := len(m.ads) - 1; i >= 0; i-- {
		a := m.ads[i]
		if len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, a.Status) {
			continue
		}
		if filter.PublicationIssueID != "" && a.PublicationIssueID != filter.PublicationIssueID {
			continue
		}
		if filter.UserID != "" && a.UserID != filter.UserID {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (m *MockAdStore) GetAd(ctx context.Context, id string) (*database.Ad, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	return m.Ad(id), nil
}

func (m *MockAdStore) CreateAd(ctx context.Context, ad *database.Ad) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if ad.ID == "" {
		ad.ID = newID()
	}
	if ad.Status == "" {
		ad.Status = database.AdStatusDraft
	}
	ad.CreatedAt = time.Now()
	ad.UpdatedAt = ad.CreatedAt
	m.ads = append(m.ads, *ad)
	return nil
}

func (m *MockAdStore) update(id string, fn func(*database.Ad)) error {
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.ads {
		if m.ads[i].ID == id {
			fn(&m.ads[i])
			m.ads[i].UpdatedAt = time.Now()
			return nil
		}
	}
	return database.ErrNotFound
}

func (m *MockAdStore) UpdateAdStatus(ctx context.Context, id string, status database.AdStatus) error {
	return m.update(id, func(a *database.Ad) { a.Status = status })
}

func (m *MockAdStore) UpdateAdSpecs(ctx context.Context, id string, specs database.AdSpecsUpdate) error {
	return m.update(id, func(a *database.Ad) {
		if specs.BleedPx != nil {
			v := *specs.BleedPx
			a.BleedPx = &v
		}
		if specs.SafePx != nil {
			v := *specs.SafePx
			a.SafePx = &v
		}
		if specs.MinFontSize != nil {
			v := *specs.MinFontSize
			a.MinFontSize = &v
		}
	})
}

func (m *MockAdStore) ListAssets(ctx context.Context, adID string) ([]database.Asset, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []database.Asset
	for _, a := range m.assets {
		if a.AdID == adID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *MockAdStore) CreateAsset(ctx context.Context, asset *database.Asset) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if asset.ID == "" {
		asset.ID = newID()
	}
	asset.CreatedAt = time.Now()
	m.assets = append(m.assets, *asset)
	return nil
}

// MockVersionStore is a mock implementation of database.VersionStore
type MockVersionStore struct {
	mu       sync.RWMutex
	versions []database.Version

	// Error injection
	ListError          error
	GetError           error
	CreateError        error
	SelectError        error
	SaveTransformError error

	// SavedTransforms counts SaveTransform calls per version
	SavedTransforms map[string]int
}

// NewMockVersionStore creates a new mock version store
func NewMockVersionStore() *MockVersionStore {
	return &MockVersionStore{SavedTransforms: make(map[string]int)}
}

// AddVersion adds a version to the mock store as-is
func (m *MockVersionStore) AddVersion(v database.Version) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.versions = append(m.versions, v)
}

// Version returns a copy of the stored version, or nil
func (m *MockVersionStore) Version(id string) *database.Version {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, v := range m.versions {
		if v.ID == id {
			return &v
		}
	}
	return nil
}

func (m *MockVersionStore) ListVersions(ctx context.Context, adID string) ([]database.Version, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []database.Version
	for i := len(m.versions) - 1; i >= 0; i-- {
		if m.versions[i].AdID == adID {
			out = append(out, m.versions[i])
		}
	}
	return out, nil
}

func (m *MockVersionStore) GetVersion(ctx context.Context, id string) (*database.Version, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	return m.Version(id), nil
}

func (m *MockVersionStore) GetSelectedVersion(ctx context.Context, adID string) (*database.Version, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, v := range m.versions {
		if v.AdID == adID && v.IsSelected {
			return &v, nil
		}
	}
	return nil, nil
}

func (m *MockVersionStore) CreateVersion(ctx context.Context, version *database.Version) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if version.ID == "" {
		version.ID = newID()
	}
	if version.Status == "" {
		version.Status = database.VersionStatusPending
	}
	version.IsSelected = true
	version.CreatedAt = time.Now()
	for i := range m.versions {
		if m.versions[i].AdID == version.AdID {
			m.versions[i].IsSelected = false
		}
	}
	m.versions = append(m.versions, *version)
	return nil
}

func (m *MockVersionStore) SetSelectedVersion(ctx context.Context, adID, versionID string) error {
	if m.SelectError != nil {
		return m.SelectError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	found := -1
	for i, v := range m.versions {
		if v.ID == versionID && v.AdID == adID {
			found = i
		}
	}
	if found < 0 {
		return database.ErrNotFound
	}
	for i := range m.versions {
		if m.versions[i].AdID == adID {
			m.versions[i].IsSelected = i == found
		}
	}
	return nil
}

func (m *MockVersionStore) UpdateVersionStatus(ctx context.Context, id string, status database.VersionStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.versions {
		if m.versions[i].ID == id {
			m.versions[i].Status = status
			return nil
		}
	}
	return database.ErrNotFound
}

func (m *MockVersionStore) SaveTransform(ctx context.Context, id string, t canvas.Transform) error {
	if m.SaveTransformError != nil {
		return m.SaveTransformError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.versions {
		if m.versions[i].ID == id {
			m.versions[i].ImageTransform = &t
			m.SavedTransforms[id]++
			return nil
		}
	}
	return database.ErrNotFound
}

// MockReviewStore is a mock implementation of database.ReviewStore
type MockReviewStore struct {
	mu     sync.RWMutex
	tokens []database.ReviewToken

	// Error injection
	CreateError error
	GetError    error
	SubmitError error
}

// NewMockReviewStore creates a new mock review store
func NewMockReviewStore() *MockReviewStore {
	return &MockReviewStore{}
}

// AddToken adds a review token to the mock store
func (m *MockReviewStore) AddToken(t database.ReviewToken) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens = append(m.tokens, t)
}

func (m *MockReviewStore) CreateReviewToken(ctx context.Context, token *database.ReviewToken) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if token.ID == "" {
		token.ID = newID()
	}
	token.CreatedAt = time.Now()
	m.tokens = append(m.tokens, *token)
	return nil
}

func (m *MockReviewStore) GetReviewToken(ctx context.Context, token string) (*database.ReviewToken, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.tokens {
		if t.Token == token {
			return &t, nil
		}
	}
	return nil, nil
}

func (m *MockReviewStore) ListReviewTokens(ctx context.Context, adID string) ([]database.ReviewToken, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []database.ReviewToken
	for i := len(m.tokens) - 1; i >= 0; i-- {
		if m.tokens[i].AdID == adID {
			out = append(out, m.tokens[i])
		}
	}
	return out, nil
}

func (m *MockReviewStore) SubmitReviewResponse(ctx context.Context, token string, response database.ReviewResponse, feedback string, at time.Time) error {
	if m.SubmitError != nil {
		return m.SubmitError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.tokens {
		t := &m.tokens[i]
		if t.Token != token {
			continue
		}
		if t.UsedAt != nil {
			return database.ErrTokenUsed
		}
		t.UsedAt = &at
		t.Response = &response
		t.Feedback = feedback
		return nil
	}
	return database.ErrNotFound
}

// MockNotificationStore is a mock implementation of database.NotificationStore
type MockNotificationStore struct {
	mu            sync.RWMutex
	notifications []database.Notification

	// Error injection
	CreateError error
	ListError   error
}

// NewMockNotificationStore creates a new mock notification store
func NewMockNotificationStore() *MockNotificationStore {
	return &MockNotificationStore{}
}

// All returns every stored notification in insertion order
func (m *MockNotificationStore) All() []database.Notification {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.notifications)
}

func (m *MockNotificationStore) CreateNotification(ctx context.Context, n *database.Notification) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if n.ID == "" {
		n.ID = newID()
	}
	n.CreatedAt = time.Now()
	m.notifications = append(m.notifications, *n)
	return nil
}

func (m *MockNotificationStore) ListNotifications(ctx context.Context, userID string, limit int) ([]database.Notification, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []database.Notification
	for i := len(m.notifications) - 1; i >= 0 && len(out) < limit; i-- {
		if m.notifications[i].UserID == userID {
			out = append(out, m.notifications[i])
		}
	}
	return out, nil
}

func (m *MockNotificationStore) UnreadCount(ctx context.Context, userID string) (int, error) {
	if m.ListError != nil {
		return 0, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, n := range m.notifications {
		if n.UserID == userID && n.ReadAt == nil {
			count++
		}
	}
	return count, nil
}

func (m *MockNotificationStore) MarkRead(ctx context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.notifications {
		n := &m.notifications[i]
		if n.ID == id && n.UserID == userID {
			if n.ReadAt == nil {
				now := time.Now()
				n.ReadAt = &now
			}
			return nil
		}
	}
	return database.ErrNotFound
}

func (m *MockNotificationStore) MarkAllRead(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	for i := range m.notifications {
		if m.notifications[i].UserID == userID && m.notifications[i].ReadAt == nil {
			m.notifications[i].ReadAt = &now
		}
	}
	return nil
}

var (
	_ database.CatalogStore      = (*MockCatalogStore)(nil)
	_ database.AdStore           = (*MockAdStore)(nil)
	_ database.VersionStore      = (*MockVersionStore)(nil)
	_ database.ReviewStore       = (*MockReviewStore)(nil)
	_ database.NotificationStore = (*MockNotificationStore)(nil)
)
