package locale

var english = map[string]string{
	"bo1.title": "BEST OF 1",
	"bo1.intro": `
Welcome {m_teamA} and {m_teamB}!

This text channel is where the referees and the team captains discuss anything related to the match between {teamA} and {teamB}.

Maps are banned with the ` + "`!ban`" + ` command, one team after the other, until a single map remains. The team that did not ban last then picks the side it starts on with ` + "`!side xxxx`" + ` (attack or defend).

For instance, team A types ` + "`!ban Pyramid`" + ` to remove _Pyramid_ from the pool, team B types ` + "`!ban d17`" + ` to remove D-17, and so on until one map is left. Team A then chooses a side with ` + "`!side attack`" + `.
{match_result_upload}`,

	"bo2.title": "BEST OF 2",
	"bo2.intro": `
Welcome {m_teamA} and {m_teamB}!

This text channel is where the referees and the team captains discuss anything related to the match between {teamA} and {teamB}.

The pick & ban sequence uses the ` + "`!pick`" + `, ` + "`!ban`" + ` and ` + "`!side`" + ` commands in the order listed below.

For instance, team A types ` + "`!ban Yard`" + ` to remove _Yard_, team B types ` + "`!ban d17`" + ` to remove D-17, then team A types ` + "`!pick Destination`" + ` to pick the first map, and so on. Each team then chooses the side on the map picked by the other team with ` + "`!side attack`" + `.
{match_result_upload}`,

	"bo3.title": "BEST OF 3",
	"bo3.intro": `
Welcome {m_teamA} and {m_teamB}!

This text channel is where the referees and the team captains discuss anything related to the match between {teamA} and {teamB}.

The pick & ban sequence uses the ` + "`!pick`" + `, ` + "`!ban`" + ` and ` + "`!side`" + ` commands in the order listed below.

For instance, team A types ` + "`!ban Yard`" + ` to remove _Yard_, team B types ` + "`!ban d17`" + ` to remove D-17, then team A types ` + "`!pick Destination`" + ` to pick the first map, and so on until a single map remains. That map is the tie-breaker. Sides are then chosen with ` + "`!side attack`" + `.
{match_result_upload}`,

	"bo5.title": "BEST OF 5",
	"bo5.intro": `
Welcome {m_teamA} and {m_teamB}!

This text channel is where the referees and the team captains discuss anything related to the match between {teamA} and {teamB}.

The pick & ban sequence uses the ` + "`!pick`" + `, ` + "`!ban`" + ` and ` + "`!side`" + ` commands in the order listed below.

Teams alternate picks until a single map remains. That map is the tie-breaker. Sides are then chosen with ` + "`!side attack`" + ` or ` + "`!side defend`" + `, one map after the other.
{match_result_upload}`,

	"ffa.title": "Free-For-All",
	"ffa.intro": `
Welcome {m_players}!

This text channel is where the referees and the players discuss anything related to this match.

:warning: **Screenshot the scoreboard**
Once the match ends, at least one player must upload a screenshot of the final scoreboard here. No screenshot means no match was played.
{match_result_upload}
Good luck!`,

	"match.result_upload": `
To upload the match results, open the link below, click "Results" and enter the scores:
{url}
- For a best-of-1, enter the number of rounds won (e.g. 11-3);
- For other formats, enter the number of maps won (e.g. 2-1);
- If your opponent did not show up, leave the fields blank and tick "Enemy did not appear";
- If you made a mistake, contact a referee.
`,

	"match.sequence_over":         "The pick & ban sequence is over!",
	"match.not_your_turn":         "Not your turn to {action}!",
	"match.invalid_turn":          "Not a {action} turn but a **{expected}** one!",
	"match.invalid_side":          "What side is that?",
	"match.invalid_map":           "That map is not in the map pool, or I did not understand you.",
	"match.already_banned":        "That map has already been banned, please choose another one.",
	"match.already_picked":        "That map has already been picked, please choose another one.",
	"match.nothing_to_undo":       "Cannot undo.",
	"match.sequence_title":        "Pick & ban sequence",
	"match.status_title":          "Current sequence status",
	"match.turn":                  "Your turn",
	"match.use":                   "Use",
	"match.ban_sequence_finished": "Ban sequence finished!",
	"match.sequence_finished":     "Pick & ban sequence finished!",
	"match.map":                   "Map",
	"match.tiebreaker":            "Tie-breaker map",
	"match.good_luck":             "glhf!",
	"match.warning":               "And don't forget to screenshot all match results!",
	"match.closed":                "The sequence was closed by a referee.",
	"match.stream_notice":         ":movie_camera: This match will be streamed{url}. Please be on time!",

	"broadcast.match_created":  ":sparkle: Match created: `{match}`\n{teamA} vs {teamB}",
	"broadcast.match_starting": ":arrow_forward: Match is ready to start: `{match}`\n{teamA} vs {teamB}",
	"broadcast.stream":         ":movie_camera: `{match}` is going live{url}\n{teamA} vs {teamB}",

	"action.ban":  "ban",
	"action.pick": "pick",
	"action.side": "side",

	"side.attacking": "attack",
	"side.defending": "defense",

	"push.turn_title":     "Your turn: {teamA} vs {teamB}",
	"push.turn_body":      "{party}, time to {action}.",
	"push.finished_title": "Maps are set: {teamA} vs {teamB}",
	"push.finished_body":  "{maps}. Good luck!",

	"ptb_afghan":       "Yard",
	"ptb_factory":      "Factory",
	"ptb_destination":  "Destination",
	"ptb_d17":          "D-17",
	"ptb_district":     "District",
	"ptb_pyramid":      "Pyramid",
	"ptb_palace":       "Palace",
	"ptb_trailerpark":  "Trailer Park",
	"ptb_bridges":      "Bridges",
	"ptb_mine":         "Mine",
	"ptb_overpass":     "Overpass",
	"ctf_convoy":       "Convoy",
	"ctf_longway":      "Longway",
	"ctf_vault":        "Vault",
	"ctf_deposit":      "Deposit",
	"ctf_construction": "Construction",
	"ctf_quarry":       "Quarry",
	"ctf_breach":       "Breach",
	"tbs_hawkrock":     "Hawkrock",
	"tbs_waterfalling": "Residense",
	"tbs_deepwater":    "Platform",
}
