package app

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/puttlog/puttlog/internal/domain"
)

// In-memory player repository
type mockPlayerRepository struct {
	mu sync.Mutex

	stats      map[string]domain.PlayerStats
	sessions   []domain.ScoredSession
	unlocks    map[string][]domain.UnlockRecord
	friends    map[string]map[string]bool
	challenges map[string]map[string]bool

	// Rank returned by UpdateBestLeaderboardRank. 0 to compute from the stored stats.
	rank int

	storeSessionErr     error
	getSessionBestsErr  error
	updateRankErr       error
	getUnlockedErr      error
	storeUnlocksErr     error
	getLeaderboardErr   error
	getLeaderboardCalls int
}

func newMockPlayerRepository() *mockPlayerRepository {
	return &mockPlayerRepository{
		stats:      map[string]domain.PlayerStats{},
		unlocks:    map[string][]domain.UnlockRecord{},
		friends:    map[string]map[string]bool{},
		challenges: map[string]map[string]bool{},
	}
}

func (m *mockPlayerRepository) withStats(stats domain.PlayerStats) *mockPlayerRepository {
	m.stats[stats.PlayerID] = stats
	return m
}

func (m *mockPlayerRepository) withUnlocked(playerID string, ids ...string) *mockPlayerRepository {
	for _, id := range ids {
		m.unlocks[playerID] = append(m.unlocks[playerID], domain.UnlockRecord{
			PlayerID:      playerID,
			AchievementID: id,
			UnlockedAt:    time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
		})
	}
	return m
}

func (m *mockPlayerRepository) ensure(playerID string) domain.PlayerStats {
	stats, ok := m.stats[playerID]
	if !ok {
		stats = domain.NewPlayerStats(playerID)
		m.stats[playerID] = stats
	}
	return stats
}

func (m *mockPlayerRepository) StoreSession(ctx context.Context, session domain.ScoredSession) (domain.PlayerStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.storeSessionErr != nil {
		return domain.PlayerStats{}, m.storeSessionErr
	}

	stats := m.ensure(session.PlayerID).ApplySession(session)
	m.stats[session.PlayerID] = stats
	m.sessions = append(m.sessions, session)
	return stats, nil
}

func (m *mockPlayerRepository) GetPlayerStats(ctx context.Context, playerID string) (domain.PlayerStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats, ok := m.stats[playerID]
	if !ok {
		return domain.PlayerStats{}, domain.ErrPlayerNotFound
	}
	return stats, nil
}

func (m *mockPlayerRepository) GetSessionBests(ctx context.Context, playerID string) (domain.SessionBests, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.getSessionBestsErr != nil {
		return domain.SessionBests{}, m.getSessionBestsErr
	}

	bests := domain.SessionBests{}
	for _, session := range m.sessions {
		if session.PlayerID == playerID {
			bests = bests.Include(session.Session, session.Points)
		}
	}
	return bests, nil
}

func (m *mockPlayerRepository) UpdateBestLeaderboardRank(ctx context.Context, playerID string) (domain.PlayerStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.updateRankErr != nil {
		return domain.PlayerStats{}, m.updateRankErr
	}

	stats, ok := m.stats[playerID]
	if !ok {
		return domain.PlayerStats{}, domain.ErrPlayerNotFound
	}
	if stats.SessionsLogged == 0 {
		return stats, nil
	}

	rank := m.rank
	if rank == 0 {
		rank = 1
		for _, other := range m.stats {
			if other.SessionsLogged > 0 && other.TotalPoints.GreaterThan(stats.TotalPoints) {
				rank++
			}
		}
	}

	stats = stats.WithLeaderboardRank(rank)
	m.stats[playerID] = stats
	return stats, nil
}

func (m *mockPlayerRepository) GetUnlockedAchievements(ctx context.Context, playerID string) ([]domain.UnlockRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.getUnlockedErr != nil {
		return nil, m.getUnlockedErr
	}

	records := make([]domain.UnlockRecord, len(m.unlocks[playerID]))
	copy(records, m.unlocks[playerID])
	return records, nil
}

func (m *mockPlayerRepository) StoreUnlocks(ctx context.Context, playerID string, achievementIDs []string, unlockedAt time.Time) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.storeUnlocksErr != nil {
		return nil, m.storeUnlocksErr
	}

	existing := domain.AchievementIDSet{}
	for _, record := range m.unlocks[playerID] {
		existing[record.AchievementID] = struct{}{}
	}

	stored := []string{}
	for _, id := range achievementIDs {
		if existing.Contains(id) {
			continue
		}
		existing[id] = struct{}{}
		m.unlocks[playerID] = append(m.unlocks[playerID], domain.UnlockRecord{
			PlayerID:      playerID,
			AchievementID: id,
			UnlockedAt:    unlockedAt,
		})
		stored = append(stored, id)
	}
	return stored, nil
}

func (m *mockPlayerRepository) AddFriend(ctx context.Context, playerID, friendID string) (domain.PlayerStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if playerID == friendID {
		return domain.PlayerStats{}, domain.ErrInvalidInput
	}
	if _, ok := m.stats[friendID]; !ok {
		return domain.PlayerStats{}, domain.ErrPlayerNotFound
	}

	for _, pair := range [][2]string{{playerID, friendID}, {friendID, playerID}} {
		m.ensure(pair[0])
		if m.friends[pair[0]] == nil {
			m.friends[pair[0]] = map[string]bool{}
		}
		m.friends[pair[0]][pair[1]] = true

		stats := m.stats[pair[0]]
		stats.FriendCount = len(m.friends[pair[0]])
		m.stats[pair[0]] = stats
	}

	return m.stats[playerID], nil
}

func (m *mockPlayerRepository) CompleteChallenge(ctx context.Context, playerID, challengeID string) (domain.PlayerStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := m.ensure(playerID)
	if m.challenges[playerID] == nil {
		m.challenges[playerID] = map[string]bool{}
	}
	m.challenges[playerID][challengeID] = true
	stats.ChallengesCompleted = len(m.challenges[playerID])
	m.stats[playerID] = stats
	return stats, nil
}

func (m *mockPlayerRepository) GetLeaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.getLeaderboardCalls++
	if m.getLeaderboardErr != nil {
		return nil, m.getLeaderboardErr
	}

	ranked := []domain.PlayerStats{}
	for _, stats := range m.stats {
		if stats.SessionsLogged > 0 {
			ranked = append(ranked, stats)
		}
	}
	sort.Slice(ranked, func(i, j int) bool {
		if !ranked[i].TotalPoints.Equal(ranked[j].TotalPoints) {
			return ranked[i].TotalPoints.GreaterThan(ranked[j].TotalPoints)
		}
		return ranked[i].PlayerID < ranked[j].PlayerID
	})

	entries := []domain.LeaderboardEntry{}
	rank := 0
	for i, stats := range ranked {
		if i == limit {
			break
		}
		if i == 0 || !stats.TotalPoints.Equal(ranked[i-1].TotalPoints) {
			rank++
		}
		entries = append(entries, domain.LeaderboardEntry{
			Rank:           rank,
			PlayerID:       stats.PlayerID,
			TotalPoints:    stats.TotalPoints,
			SessionsLogged: stats.SessionsLogged,
		})
	}
	return entries, nil
}

type notification struct {
	playerID   string
	ids        []string
	unlockedAt time.Time
}

type mockNotifier struct {
	notifications chan notification
	err           error
}

func newMockNotifier() *mockNotifier {
	return &mockNotifier{notifications: make(chan notification, 10)}
}

func (m *mockNotifier) NotifyUnlocked(ctx context.Context, playerID string, unlocked []domain.AchievementDefinition, unlockedAt time.Time) error {
	ids := make([]string, 0, len(unlocked))
	for _, definition := range unlocked {
		ids = append(ids, definition.ID)
	}
	m.notifications <- notification{playerID: playerID, ids: ids, unlockedAt: unlockedAt}
	return m.err
}

// Wait for the next background notification
func (m *mockNotifier) next() (notification, bool) {
	select {
	case n := <-m.notifications:
		return n, true
	case <-time.After(time.Second):
		return notification{}, false
	}
}

// Check that no notification arrives within a short time
func (m *mockNotifier) noNotification() bool {
	select {
	case <-m.notifications:
		return false
	case <-time.After(50 * time.Millisecond):
		return true
	}
}

func definitionIDs(definitions []domain.AchievementDefinition) []string {
	ids := make([]string, 0, len(definitions))
	for _, definition := range definitions {
		ids = append(ids, definition.ID)
	}
	return ids
}

func defaultCatalog() domain.AchievementCatalog {
	catalog, skipped, err := domain.BindAchievementCatalog(domain.DefaultAchievementDefinitions(), domain.DefaultAchievementRules())
	if err != nil || len(skipped) > 0 {
		panic("default catalog does not bind")
	}
	return catalog
}
