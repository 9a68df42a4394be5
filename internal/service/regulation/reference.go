package regulation

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"compliance-platform/internal/repository"
)

// NextReference derives the next PREFIX-YEAR-NNN reference by re-reading the
// current maximum for this year and incrementing its numeric suffix. The
// first regulation of a year gets 001, as does a year whose stored maximum
// has an unparsable suffix.
func NextReference(ctx context.Context, repo repository.RegulationRepository, prefix string) (string, error) {
	yearPrefix := fmt.Sprintf("%s-%d-", prefix, time.Now().Year())

	latest, err := repo.LatestReference(ctx, yearPrefix)
	if err != nil {
		return "", err
	}

	seq := 1
	if latest != "" {
		if n, err := strconv.Atoi(strings.TrimPrefix(latest, yearPrefix)); err == nil {
			seq = n + 1
		}
	}
	return fmt.Sprintf("%s%03d", yearPrefix, seq), nil
}
