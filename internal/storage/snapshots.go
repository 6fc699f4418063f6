package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/slapshot-labs/fantasy-hockey-pipeline/internal/config"
	"github.com/slapshot-labs/fantasy-hockey-pipeline/internal/models"
)

// Snapshot categories. Each pipeline run writes one immutable file per
// category; readers always take the newest file of a category.
const (
	CategoryTeamData        = "team_data"
	CategoryFreeAgents      = "free_agents"
	CategoryStandings       = "standings"
	CategoryAllTeams        = "all_teams_data"
	CategoryRecommendations = "recommendations"
	CategorySummary         = "summary"
	CategorySwapAnalysis    = "swap_analysis"
)

// TimestampLayout embeds the run timestamp in snapshot filenames.
const TimestampLayout = "20060102_150405"

// Store persists run snapshots as timestamped JSON files. data holds raw
// fetch results, output holds analysis results, reports holds markdown.
type Store struct {
	dataDir       string
	outputDir     string
	reportsDir    string
	allStarFile   string
	retentionDays int
	logger        *logrus.Logger
}

// NewStore creates the snapshot directories if needed.
func NewStore(cfg config.StorageConfig, logger *logrus.Logger) (*Store, error) {
	for _, dir := range []string{cfg.DataDir, cfg.OutputDir, cfg.ReportsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return &Store{
		dataDir:       cfg.DataDir,
		outputDir:     cfg.OutputDir,
		reportsDir:    cfg.ReportsDir,
		allStarFile:   cfg.AllStarFile,
		retentionDays: cfg.RetentionDays,
		logger:        logger,
	}, nil
}

// SaveRaw persists one raw-data category under the data directory.
func (s *Store) SaveRaw(category string, ts time.Time, v interface{}) error {
	return s.writeJSON(s.dataDir, category, ts, v)
}

// SaveRecommendations persists a recommendation set in the canonical
// schema.
func (s *Store) SaveRecommendations(set models.RecommendationSet) error {
	return s.writeJSON(s.outputDir, CategoryRecommendations, set.GeneratedAt, set)
}

// SaveSwapAnalysis persists a swap analysis run.
func (s *Store) SaveSwapAnalysis(analysis models.SwapAnalysis) error {
	return s.writeJSON(s.outputDir, CategorySwapAnalysis, analysis.GeneratedAt, analysis)
}

// SaveSummary persists the compact per-run digest.
func (s *Store) SaveSummary(summary models.RunSummary) error {
	return s.writeJSON(s.outputDir, CategorySummary, summary.Timestamp, summary)
}

// SaveReport writes the markdown analysis report.
func (s *Store) SaveReport(report string, ts time.Time) error {
	path := filepath.Join(s.reportsDir, fmt.Sprintf("analysis_report_%s.md", ts.Format(TimestampLayout)))
	if err := os.WriteFile(path, []byte(report), 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	s.logger.WithField("file", path).Info("Saved analysis report")
	return nil
}

func (s *Store) writeJSON(dir, category string, ts time.Time, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s snapshot: %w", category, err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s_%s.json", category, ts.Format(TimestampLayout)))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s snapshot: %w", category, err)
	}

	s.logger.WithFields(logrus.Fields{
		"category": category,
		"file":     path,
	}).Debug("Saved snapshot")
	return nil
}

// latestPath returns the newest file matching <category>_*.json in dir by
// modification time. An empty string means no snapshot exists.
func (s *Store) latestPath(dir, category string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, category+"_*.json"))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", nil
	}

	var newest string
	var newestMod time.Time
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		if newest == "" || info.ModTime().After(newestMod) {
			newest = path
			newestMod = info.ModTime()
		}
	}

	return newest, nil
}

// LatestRecommendations loads the most recent recommendation snapshot,
// migrating legacy bare-array files to the canonical schema.
func (s *Store) LatestRecommendations() (*models.RecommendationSet, error) {
	path, err := s.latestPath(s.outputDir, CategoryRecommendations)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return nil, fmt.Errorf("no recommendation snapshot found in %s", s.outputDir)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	set, err := decodeRecommendations(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	if set.GeneratedAt.IsZero() {
		set.GeneratedAt = timestampFromFilename(path)
	}
	return set, nil
}

// LatestSwapAnalysis loads the most recent swap analysis snapshot.
func (s *Store) LatestSwapAnalysis() (*models.SwapAnalysis, error) {
	var analysis models.SwapAnalysis
	if err := s.loadLatest(s.outputDir, CategorySwapAnalysis, &analysis); err != nil {
		return nil, err
	}
	return &analysis, nil
}

// LatestSummary loads the most recent run summary.
func (s *Store) LatestSummary() (*models.RunSummary, error) {
	var summary models.RunSummary
	if err := s.loadLatest(s.outputDir, CategorySummary, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// LatestTeamData loads the most recent roster snapshot.
func (s *Store) LatestTeamData() (*models.TeamInfo, error) {
	var team models.TeamInfo
	if err := s.loadLatest(s.dataDir, CategoryTeamData, &team); err != nil {
		return nil, err
	}
	return &team, nil
}

// LatestStandings loads the most recent standings snapshot.
func (s *Store) LatestStandings() ([]models.StandingsEntry, error) {
	var standings []models.StandingsEntry
	if err := s.loadLatest(s.dataDir, CategoryStandings, &standings); err != nil {
		return nil, err
	}
	return standings, nil
}

// LatestFreeAgents loads the most recent free-agent snapshot.
func (s *Store) LatestFreeAgents() ([]models.PlayerRecord, error) {
	var pool []models.PlayerRecord
	if err := s.loadLatest(s.dataDir, CategoryFreeAgents, &pool); err != nil {
		return nil, err
	}
	return pool, nil
}

func (s *Store) loadLatest(dir, category string, dest interface{}) error {
	path, err := s.latestPath(dir, category)
	if err != nil {
		return err
	}
	if path == "" {
		return fmt.Errorf("no %s snapshot found in %s", category, dir)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

// Cleanup applies the retention policy: the newest file of every category
// is always kept, older siblings are removed once past the retention
// window. The All-Star reference table is never touched.
func (s *Store) Cleanup() (int, error) {
	categories := map[string][]string{
		s.dataDir:   {CategoryTeamData, CategoryFreeAgents, CategoryStandings, CategoryAllTeams, "matchup_data", "combined_data"},
		s.outputDir: {CategoryRecommendations, CategorySummary, CategorySwapAnalysis},
	}

	cutoff := time.Now().AddDate(0, 0, -s.retentionDays)
	deleted := 0

	for dir, cats := range categories {
		for _, category := range cats {
			n, err := s.cleanupCategory(dir, category+"_*.json", cutoff)
			if err != nil {
				return deleted, err
			}
			deleted += n
		}
	}

	n, err := s.cleanupCategory(s.reportsDir, "analysis_report_*.md", cutoff)
	if err != nil {
		return deleted, err
	}
	deleted += n

	s.logger.WithField("deleted", deleted).Info("Snapshot cleanup completed")
	return deleted, nil
}

func (s *Store) cleanupCategory(dir, pattern string, cutoff time.Time) (int, error) {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return 0, err
	}
	if len(matches) <= 1 {
		return 0, nil
	}

	type fileInfo struct {
		path string
		mod  time.Time
	}
	files := make([]fileInfo, 0, len(matches))
	for _, path := range matches {
		if s.allStarFile != "" && filepath.Clean(path) == filepath.Clean(s.allStarFile) {
			continue
		}
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		files = append(files, fileInfo{path: path, mod: info.ModTime()})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].mod.After(files[j].mod) })

	deleted := 0
	for _, f := range files[1:] {
		if f.mod.After(cutoff) {
			continue
		}
		if err := os.Remove(f.path); err != nil {
			s.logger.WithError(err).WithField("file", f.path).Warn("Failed to delete old snapshot")
			continue
		}
		deleted++
	}

	return deleted, nil
}

// timestampFromFilename recovers the run timestamp embedded in a snapshot
// filename, falling back to the zero time when absent.
func timestampFromFilename(path string) time.Time {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	idx := strings.LastIndex(base, "_")
	if idx < 0 {
		return time.Time{}
	}
	// The timestamp spans the last two underscore-separated fields.
	idx = strings.LastIndex(base[:idx], "_")
	if idx < 0 {
		return time.Time{}
	}
	ts, err := time.ParseInLocation(TimestampLayout, base[idx+1:], time.Local)
	if err != nil {
		return time.Time{}
	}
	return ts
}
