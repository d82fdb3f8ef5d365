// Package seedbank supplies candidate seed questions per role, branch and
// difficulty. Profiles carry question pools plus the per-role follow-up rules
// consumed by the interview engine.
package seedbank

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"

	"github.com/novexa-ai/interviewd/config"
	apperrors "github.com/novexa-ai/interviewd/errors"
	"github.com/novexa-ai/interviewd/pkg/logging"
)

// GenericFallbackQuestion is served when no pool matches.
const GenericFallbackQuestion = "Tell me about your background and why you're interested in this role."

// Branch holds branch-specific question pools.
type Branch struct {
	// Technical maps difficulty to a question pool.
	Technical  map[string][]string `json:"technical"`
	Behavioral []string            `json:"behavioral"`
}

// RoleProfile describes one interviewable role.
type RoleProfile struct {
	Name          string               `json:"name"`
	Branches      map[string]Branch    `json:"branches"`
	Technical     map[string][]string  `json:"technical"`
	Behavioral    []string             `json:"behavioral"`
	FollowUpRules config.FollowUpRules `json:"follow_up_rules"`
}

// Bank loads role profiles from some backing source.
type Bank interface {
	LoadRole(ctx context.Context, role string) (*RoleProfile, error)
}

// PickSeedQuestion selects a seed question from the profile's pools:
// branch technical for the difficulty, branch behavioral, role technical for
// the difficulty, role behavioral, then the generic fallback. Selection
// within a matched pool is random.
func PickSeedQuestion(p *RoleProfile, branch, difficulty string) string {
	if p == nil {
		return GenericFallbackQuestion
	}
	difficulty = strings.ToLower(difficulty)

	if branch != "" {
		if b, ok := p.Branches[strings.ToLower(branch)]; ok {
			if pool := b.Technical[difficulty]; len(pool) > 0 {
				return pool[rand.IntN(len(pool))]
			}
			if len(b.Behavioral) > 0 {
				return b.Behavioral[rand.IntN(len(b.Behavioral))]
			}
		}
	}

	if pool := p.Technical[difficulty]; len(pool) > 0 {
		return pool[rand.IntN(len(pool))]
	}
	if len(p.Behavioral) > 0 {
		return p.Behavioral[rand.IntN(len(p.Behavioral))]
	}

	return GenericFallbackQuestion
}

// FileBank loads role profiles from a directory of JSON files, one file per
// role named <role>.json (lowercased).
type FileBank struct {
	dir    string
	logger *slog.Logger
}

// NewFileBank creates a bank over the given directory.
func NewFileBank(dir string) *FileBank {
	return &FileBank{
		dir:    dir,
		logger: logging.WithComponent("seedbank"),
	}
}

// LoadRole implements Bank.
func (b *FileBank) LoadRole(ctx context.Context, role string) (*RoleProfile, error) {
	if role == "" {
		return nil, fmt.Errorf("%w: role cannot be empty", apperrors.ErrInvalidInput)
	}

	path := filepath.Join(b.dir, strings.ToLower(role)+".json")
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrRoleNotFound, role)
		}
		return nil, fmt.Errorf("failed to read role profile %s: %w", path, err)
	}

	var profile RoleProfile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return nil, fmt.Errorf("failed to decode role profile %s: %w", path, err)
	}
	if profile.Name == "" {
		profile.Name = strings.ToLower(role)
	}
	profile.FollowUpRules = profile.FollowUpRules.Normalize()

	return &profile, nil
}
