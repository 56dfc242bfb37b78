package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsedeskhq/pulsedesk-go/internal/domain/entities"
)

func matrixProfiles() map[string]*entities.UnifiedUserProfile {
	build := func(email string, tickets, events int) *entities.UnifiedUserProfile {
		p := entities.NewUnifiedUserProfile(email)
		p.Support.TotalTickets = tickets
		p.Usage.TotalEvents = events
		return p
	}
	return map[string]*entities.UnifiedUserProfile{
		"both@a.co":    build("both@a.co", 2, 5),
		"tickets@a.co": build("tickets@a.co", 1, 0),
		"usage@a.co":   build("usage@a.co", 0, 3),
		"neither@a.co": build("neither@a.co", 0, 0),
	}
}

func TestCrossSurfaceMatrix(t *testing.T) {
	matrix := CrossSurfaceMatrix(matrixProfiles())

	t.Run("cells", func(t *testing.T) {
		assert.Equal(t, 1, matrix.Cells[1][1], "both surfaces")
		assert.Equal(t, 1, matrix.Cells[1][0], "support only")
		assert.Equal(t, 1, matrix.Cells[0][1], "usage only")
		assert.Zero(t, matrix.Cells[0][0], "emails outside both true-sets are not counted")
	})

	t.Run("cell total equals the union of the true-sets", func(t *testing.T) {
		sum := 0
		for _, row := range matrix.Cells {
			for _, cell := range row {
				sum += cell
			}
		}
		assert.Equal(t, 3, sum)
		assert.Equal(t, sum, matrix.Total)
	})
}

func TestCountCombinations(t *testing.T) {
	profiles := matrixProfiles()
	predicates := map[string]Predicate{
		"support": func(email string) bool { return profiles[email].Support.TotalTickets > 0 },
		"usage":   func(email string) bool { return profiles[email].Usage.TotalEvents > 0 },
	}

	counts := CountCombinations(predicates, sortedEmails(profiles))
	require.Len(t, counts, 3)
	assert.Equal(t, 1, counts["support+usage"])
	assert.Equal(t, 1, counts["support"])
	assert.Equal(t, 1, counts["usage"])
}
