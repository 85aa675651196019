package analytics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"nba_insights/internal/models"
)

// topScoringLimit bounds the top-scoring-games result.
const topScoringLimit = 10

// Analyzer runs the six analytical queries against one snapshot. The decade
// window is fixed at construction so repeated runs against the same snapshot
// are identical.
type Analyzer struct {
	snap *Snapshot

	// cutoffYear is the earliest season start year inside the trailing
	// decade, inclusive.
	cutoffYear int
}

// NewAnalyzer creates an analyzer whose decade filter trails ten years back
// from now.
func NewAnalyzer(snap *Snapshot, now time.Time) *Analyzer {
	return &Analyzer{
		snap:       snap,
		cutoffYear: now.Year() - 10,
	}
}

// inDecade reports whether a season falls within the trailing decade.
// A malformed season label is a precondition violation attributed to the
// calling query, not a skipped row.
func (a *Analyzer) inDecade(season, query string) (bool, error) {
	year, err := models.SeasonStartYear(season)
	if err != nil {
		return false, &PreconditionError{Query: query, Reason: err.Error()}
	}
	return year >= a.cutoffYear, nil
}

// GameScore is one row of the top-scoring-games result.
type GameScore struct {
	GameID     int
	TotalScore int
}

// TopScoringGames returns the ten highest-scoring games of the last decade,
// ordered by combined score descending. Ties resolve by game id ascending so
// the cut at rank ten is deterministic.
func (a *Analyzer) TopScoringGames() ([]GameScore, error) {
	const query = "top scoring games"
	if err := a.snap.requireGames(query); err != nil {
		return nil, err
	}

	var rows []GameScore
	for i := range a.snap.Games {
		g := &a.snap.Games[i]
		ok, err := a.inDecade(g.Season, query)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		rows = append(rows, GameScore{GameID: g.GameID, TotalScore: g.TotalScore()})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].TotalScore != rows[j].TotalScore {
			return rows[i].TotalScore > rows[j].TotalScore
		}
		return rows[i].GameID < rows[j].GameID
	})

	if len(rows) > topScoringLimit {
		rows = rows[:topScoringLimit]
	}
	return rows, nil
}

// TeamRecord is one row of the win/loss record result.
type TeamRecord struct {
	TeamName string
	Wins     int
	Losses   int
}

// WinLossRecords computes the all-time win/loss record for every team.
// Every stored team appears, zero-defaulted, even with no matching games;
// tied games count toward neither side. This query deliberately covers all
// seasons rather than just the last decade.
func (a *Analyzer) WinLossRecords() ([]TeamRecord, error) {
	const query = "win/loss records"
	if err := a.snap.requireTeams(query); err != nil {
		return nil, err
	}
	if err := a.snap.requireGames(query); err != nil {
		return nil, err
	}

	// Enumerate every team first so unmatched teams keep a 0-0 record.
	records := make(map[string]*TeamRecord, len(a.snap.Teams))
	for i := range a.snap.Teams {
		name := a.snap.Teams[i].TeamName
		records[name] = &TeamRecord{TeamName: name}
	}

	for i := range a.snap.Games {
		g := &a.snap.Games[i]
		if g.HomeScore == g.AwayScore {
			continue
		}
		winner, loser := g.HomeTeam, g.AwayTeam
		if g.AwayScore > g.HomeScore {
			winner, loser = g.AwayTeam, g.HomeTeam
		}
		if t, ok := a.snap.TeamByName(winner); ok {
			records[t.TeamName].Wins++
		}
		if t, ok := a.snap.TeamByName(loser); ok {
			records[t.TeamName].Losses++
		}
	}

	rows := make([]TeamRecord, 0, len(records))
	for _, r := range records {
		rows = append(rows, *r)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].TeamName < rows[j].TeamName })
	return rows, nil
}

// SeasonAverage is one row of the average-points-per-season result.
type SeasonAverage struct {
	TeamName     string
	Season       string
	AverageScore float64
}

// AverageSeasonScores computes each team's average points scored per season
// over the last decade, ordered by team then season.
func (a *Analyzer) AverageSeasonScores() ([]SeasonAverage, error) {
	const query = "average season scores"
	if err := a.snap.requireTeams(query); err != nil {
		return nil, err
	}
	if err := a.snap.requireGames(query); err != nil {
		return nil, err
	}

	type key struct{ team, season string }
	type acc struct {
		sum   int
		count int
	}
	sums := make(map[key]*acc)

	add := func(team, season string, score int) {
		k := key{team: team, season: season}
		if sums[k] == nil {
			sums[k] = &acc{}
		}
		sums[k].sum += score
		sums[k].count++
	}

	for i := range a.snap.Games {
		g := &a.snap.Games[i]
		ok, err := a.inDecade(g.Season, query)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if t, found := a.snap.TeamByName(g.HomeTeam); found {
			add(t.TeamName, g.Season, g.HomeScore)
		}
		if t, found := a.snap.TeamByName(g.AwayTeam); found {
			add(t.TeamName, g.Season, g.AwayScore)
		}
	}

	rows := make([]SeasonAverage, 0, len(sums))
	for k, v := range sums {
		rows = append(rows, SeasonAverage{
			TeamName:     k.team,
			Season:       k.season,
			AverageScore: float64(v.sum) / float64(v.count),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].TeamName != rows[j].TeamName {
			return rows[i].TeamName < rows[j].TeamName
		}
		return rows[i].Season < rows[j].Season
	})
	return rows, nil
}

// ConferenceRecord is one row of the conference win totals result.
type ConferenceRecord struct {
	Conference string
	Wins       int
}

// ConferenceWins sums last-decade wins per conference. Every conference
// present in the teams table appears, zero-defaulted. The full set of rows
// is returned; identifying the single leader is left to the caller.
func (a *Analyzer) ConferenceWins() ([]ConferenceRecord, error) {
	const query = "conference wins"
	if err := a.snap.requireTeams(query); err != nil {
		return nil, err
	}
	if err := a.snap.requireGames(query); err != nil {
		return nil, err
	}

	wins := make(map[string]int)
	for i := range a.snap.Teams {
		if c := a.snap.Teams[i].Conference; c.Valid {
			if _, seen := wins[c.String]; !seen {
				wins[c.String] = 0
			}
		}
	}

	for i := range a.snap.Games {
		g := &a.snap.Games[i]
		ok, err := a.inDecade(g.Season, query)
		if err != nil {
			return nil, err
		}
		if !ok || g.HomeScore == g.AwayScore {
			continue
		}
		winner := g.HomeTeam
		if g.AwayScore > g.HomeScore {
			winner = g.AwayTeam
		}
		if t, found := a.snap.TeamByName(winner); found && t.Conference.Valid {
			wins[t.Conference.String]++
		}
	}

	rows := make([]ConferenceRecord, 0, len(wins))
	for conf, w := range wins {
		rows = append(rows, ConferenceRecord{Conference: conf, Wins: w})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Conference < rows[j].Conference })
	return rows, nil
}

// TeamMargin is one row of the margin-of-victory result.
type TeamMargin struct {
	TeamName      string
	AverageMargin float64
}

// VictoryMargins computes each team's average margin of victory over the
// last decade, averaging only over games the team won. Losses and ties
// contribute to neither the sum nor the count, so a team with no wins is
// absent from the result rather than listed at zero. Margins are rounded to
// two decimals and ordered largest first.
func (a *Analyzer) VictoryMargins() ([]TeamMargin, error) {
	const query = "victory margins"
	if err := a.snap.requireTeams(query); err != nil {
		return nil, err
	}
	if err := a.snap.requireGames(query); err != nil {
		return nil, err
	}

	type acc struct {
		sum  int
		wins int
	}
	margins := make(map[string]*acc)

	for i := range a.snap.Games {
		g := &a.snap.Games[i]
		ok, err := a.inDecade(g.Season, query)
		if err != nil {
			return nil, err
		}
		if !ok || g.HomeScore == g.AwayScore {
			continue
		}
		winner, margin := g.HomeTeam, g.HomeScore-g.AwayScore
		if g.AwayScore > g.HomeScore {
			winner, margin = g.AwayTeam, g.AwayScore-g.HomeScore
		}
		t, found := a.snap.TeamByName(winner)
		if !found {
			continue
		}
		if margins[t.TeamName] == nil {
			margins[t.TeamName] = &acc{}
		}
		margins[t.TeamName].sum += margin
		margins[t.TeamName].wins++
	}

	rows := make([]TeamMargin, 0, len(margins))
	for name, m := range margins {
		rows = append(rows, TeamMargin{
			TeamName:      name,
			AverageMargin: round2(float64(m.sum) / float64(m.wins)),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].AverageMargin != rows[j].AverageMargin {
			return rows[i].AverageMargin > rows[j].AverageMargin
		}
		return rows[i].TeamName < rows[j].TeamName
	})
	return rows, nil
}

// SeasonBalance is one row of the points scored vs. allowed result.
type SeasonBalance struct {
	TeamName         string
	Season           string
	GamesPlayed      int
	AvgPointsScored  float64
	AvgPointsAllowed float64
}

// SeasonPointsBalance computes, per team and season over the last decade,
// games played and the per-game averages of points scored and points
// allowed. The scored and allowed aggregates are built independently and
// joined on (team, season); rows are ordered by team then season.
func (a *Analyzer) SeasonPointsBalance() ([]SeasonBalance, error) {
	const query = "season points balance"
	if err := a.snap.requireTeams(query); err != nil {
		return nil, err
	}
	if err := a.snap.requireGames(query); err != nil {
		return nil, err
	}

	scored, err := a.seasonPointsAggregate(query, func(own, opp int) int { return own })
	if err != nil {
		return nil, err
	}
	allowed, err := a.seasonPointsAggregate(query, func(own, opp int) int { return opp })
	if err != nil {
		return nil, err
	}

	rows := make([]SeasonBalance, 0, len(scored))
	for k, ps := range scored {
		pa, ok := allowed[k]
		if !ok {
			// Both aggregates fold the same games, so a one-sided key
			// cannot occur.
			return nil, fmt.Errorf("%s: aggregate mismatch for %s %s", query, k.team, k.season)
		}
		rows = append(rows, SeasonBalance{
			TeamName:         k.team,
			Season:           k.season,
			GamesPlayed:      ps.games,
			AvgPointsScored:  round2(float64(ps.points) / float64(ps.games)),
			AvgPointsAllowed: round2(float64(pa.points) / float64(pa.games)),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].TeamName != rows[j].TeamName {
			return rows[i].TeamName < rows[j].TeamName
		}
		return rows[i].Season < rows[j].Season
	})
	return rows, nil
}

type seasonKey struct{ team, season string }

type pointsAgg struct {
	games  int
	points int
}

// seasonPointsAggregate folds decade-filtered games into per-(team, season)
// game counts and point sums, with pick choosing which side of each game
// contributes (own or opponent score).
func (a *Analyzer) seasonPointsAggregate(query string, pick func(own, opp int) int) (map[seasonKey]pointsAgg, error) {
	agg := make(map[seasonKey]pointsAgg)

	add := func(team, season string, own, opp int) {
		k := seasonKey{team: team, season: season}
		v := agg[k]
		v.games++
		v.points += pick(own, opp)
		agg[k] = v
	}

	for i := range a.snap.Games {
		g := &a.snap.Games[i]
		ok, err := a.inDecade(g.Season, query)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if t, found := a.snap.TeamByName(g.HomeTeam); found {
			add(t.TeamName, g.Season, g.HomeScore, g.AwayScore)
		}
		if t, found := a.snap.TeamByName(g.AwayTeam); found {
			add(t.TeamName, g.Season, g.AwayScore, g.HomeScore)
		}
	}
	return agg, nil
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
