package models

import (
	"database/sql"
	"strings"
	"time"
)

// Team represents an NBA franchise with a known conference/division
// grouping. A row exists only when the standings lookup for the team
// returned group data; teams without groups are never stored.
type Team struct {
	ID         int            `db:"id"`
	TeamID     int            `db:"team_id"`
	TeamName   string         `db:"team_name"`
	Conference sql.NullString `db:"conference"`
	Division   sql.NullString `db:"division"`
	CreatedAt  time.Time      `db:"created_at"`
}

// TeamInfo is a single entry in the api-sports.io teams endpoint response.
type TeamInfo struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// StandingsGroup is one group entry for a team in the standings endpoint
// response. The API nests the entries one list level deeper than
// documented; the client flattens that before handing them over.
type StandingsGroup struct {
	Group struct {
		Name string `json:"name"`
	} `json:"group"`
}

// GroupsToTeam builds a Team from its API info and standings groups.
// A group whose name contains "conference" is the conference; any other
// group is the division. It reports false when the team has no group data
// at all, in which case the team must not be stored.
func GroupsToTeam(info TeamInfo, groups []StandingsGroup) (*Team, bool) {
	if len(groups) == 0 {
		return nil, false
	}

	team := &Team{
		TeamID:   info.ID,
		TeamName: info.Name,
	}
	for _, g := range groups {
		name := g.Group.Name
		if name == "" {
			continue
		}
		if strings.Contains(strings.ToLower(name), "conference") {
			team.Conference = sql.NullString{String: name, Valid: true}
		} else {
			team.Division = sql.NullString{String: name, Valid: true}
		}
	}
	return team, true
}

// NormalizeTeamName produces the lookup key used to match game sides
// against stored teams. Case and surrounding/internal whitespace drift
// between endpoints must not break the join.
func NormalizeTeamName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
