package draft

// MapStatus is the state of one map of the pool.
type MapStatus string

const (
	MapOpen   MapStatus = "open"
	MapBanned MapStatus = "banned"
	MapPicked MapStatus = "picked"
)

type MapLine struct {
	MapID  string    `json:"mapId"`
	Name   string    `json:"name"`
	Status MapStatus `json:"status"`
}

// Status is republished after every change to the match.
type Status struct {
	Format      Format    `json:"format"`
	Turn        int       `json:"turn"`
	Total       int       `json:"total"`
	Maps        []MapLine `json:"maps"`
	Done        bool      `json:"done"`
	ForceClosed bool      `json:"forceClosed"`
}

// TurnPrompt asks the acting party for its next action.
type TurnPrompt struct {
	Turn      int    `json:"turn"`
	Slot      Slot   `json:"slot"`
	PartyName string `json:"party"`
	Mention   string `json:"mention"`
	Action    Action `json:"action"`
	Hint      string `json:"hint"`
	// MapOrdinal and MapName are set on side steps: the map the side applies to.
	MapOrdinal int    `json:"mapOrdinal,omitempty"`
	MapID      string `json:"mapId,omitempty"`
	MapName    string `json:"mapName,omitempty"`
}

const (
	sideHint = "attack/defense"
	mapHint  = "xxxxx"
)

type SummaryEntry struct {
	Ordinal int          `json:"ordinal"`
	Label   SummaryLabel `json:"label"`
	MapID   string       `json:"mapId"`
	MapName string       `json:"mapName"`
	Side    Side         `json:"side"`
	Party   string       `json:"party"`
}

// Summary is produced once the whole sequence has been played.
type Summary struct {
	Format    Format         `json:"format"`
	TeamA     string         `json:"teamA"`
	TeamB     string         `json:"teamB"`
	Entries   []SummaryEntry `json:"entries"`
	ResultURL string         `json:"resultUrl,omitempty"`
}

type SequenceLine struct {
	Party  string `json:"party"`
	Action Action `json:"action"`
}

// Intro is the rendered welcome of a new match.
type Intro struct {
	Title    string         `json:"title"`
	Rules    string         `json:"rules"`
	Sequence []SequenceLine `json:"sequence"`
}

const (
	BroadcastMatchCreated  = "match_created"
	BroadcastMatchStarting = "match_starting"
)

// Announcement is a message for the tournament-wide broadcast rooms.
type Announcement struct {
	Event   string   `json:"event"`
	TeamA   string   `json:"teamA"`
	TeamB   string   `json:"teamB"`
	Summary *Summary `json:"summary,omitempty"`
}

// Notifier receives everything a match publishes. Implementations must not
// block: the engine calls them while applying an action.
type Notifier interface {
	SendStatus(Status)
	SendTurnPrompt(TurnPrompt)
	SendSummary(Summary)
	Broadcast(Announcement)
}

type nopNotifier struct{}

func (nopNotifier) SendStatus(Status)         {}
func (nopNotifier) SendTurnPrompt(TurnPrompt) {}
func (nopNotifier) SendSummary(Summary)       {}
func (nopNotifier) Broadcast(Announcement)    {}
