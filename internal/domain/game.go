package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// GameID is the identifier assigned by the remote catalog. The service has
// returned both numeric and string ids, so both decode into the same type.
type GameID string

func (id *GameID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = GameID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("game id: %w", err)
	}
	*id = GameID(n.String())
	return nil
}

func (id GameID) String() string { return string(id) }

// Int reports the id as an integer when it is numeric.
func (id GameID) Int() (int64, bool) {
	n, err := strconv.ParseInt(string(id), 10, 64)
	return n, err == nil
}

// Requirements lists the minimum system requirements of a game.
type Requirements struct {
	OS        string `json:"os"`
	Processor string `json:"processor"`
	Memory    string `json:"memory"`
	Graphics  string `json:"graphics"`
	Storage   string `json:"storage"`
}

// Game is one purchasable game-key product.
type Game struct {
	ID            GameID       `json:"id,omitempty"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	Price         float64      `json:"price"`
	OriginalPrice float64      `json:"originalPrice"`
	Discount      float64      `json:"discount"`
	Category      string       `json:"category"`
	Platform      []string     `json:"platform"`
	Rating        float64      `json:"rating"`
	Image         string       `json:"image"`
	ReleaseDate   string       `json:"releaseDate"`
	Publisher     string       `json:"publisher"`
	Requirements  Requirements `json:"requirements"`
	Features      []string     `json:"features"`
	Featured      bool         `json:"featured"`
}

// Clone returns a deep copy so snapshots never share slices with the source.
func (g Game) Clone() Game {
	out := g
	if g.Platform != nil {
		out.Platform = append([]string(nil), g.Platform...)
	}
	if g.Features != nil {
		out.Features = append([]string(nil), g.Features...)
	}
	return out
}

// RequirementsPatch holds the requirement fields sent in a partial update.
type RequirementsPatch struct {
	OS        string `json:"os,omitempty"`
	Processor string `json:"processor,omitempty"`
	Memory    string `json:"memory,omitempty"`
	Graphics  string `json:"graphics,omitempty"`
	Storage   string `json:"storage,omitempty"`
}

// GamePatch is the partial field map accepted by the catalog's PATCH route.
// Keys follow the remote service's partial-update naming.
type GamePatch struct {
	Title         *string            `json:"title,omitempty"`
	Description   *string            `json:"description,omitempty"`
	Image         *string            `json:"image,omitempty"`
	Publisher     *string            `json:"publisher,omitempty"`
	Category      *string            `json:"category,omitempty"`
	Platform      []string           `json:"platform,omitempty"`
	Price         *float64           `json:"price,omitempty"`
	OriginalPrice *float64           `json:"original_price,omitempty"`
	Discount      *float64           `json:"discount,omitempty"`
	Rating        *float64           `json:"rating,omitempty"`
	ReleaseDate   *string            `json:"release_date,omitempty"`
	Requirements  *RequirementsPatch `json:"requirements,omitempty"`
	Features      []string           `json:"features,omitempty"`
	Featured      *bool              `json:"featured,omitempty"`
}
