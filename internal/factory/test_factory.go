package factory

import (
	"time"

	"github.com/mcoot/wallwars-go/internal/dependencies/mocks"
	"github.com/mcoot/wallwars-go/internal/rating"
	"github.com/mcoot/wallwars-go/internal/storage/memory"
	"github.com/mcoot/wallwars-go/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock        *mocks.MockClock
	MockRandom       *mocks.MockRandom
	MockAvailability *mocks.MockAvailability
	MemoryStorage    *memory.Storage
}

// NewTestApp creates an App configured for testing with mocked dependencies.
// The store starts out available.
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	mockAvail := mocks.NewMockAvailability(true)

	app := newWithDependencies(store, mockAvail, rating.NewGlicko2(rating.DefaultConfig()), mockClock, mockRandom, testutil.NopLogger())

	return &TestApp{
		App:              app,
		MockClock:        mockClock,
		MockRandom:       mockRandom,
		MockAvailability: mockAvail,
		MemoryStorage:    store,
	}
}
