package provider

// Coordinate is a WGS84 position.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Features are the yes/no services advertised by the education directory.
type Features struct {
	Catering             bool `json:"restauration"`
	Boarding             bool `json:"hebergement"`
	Inclusion            bool `json:"ulis"`
	Apprenticeship       bool `json:"apprentissage"`
	Segpa                bool `json:"segpa"`
	ArtsSection          bool `json:"section_arts"`
	CinemaSection        bool `json:"section_cinema"`
	TheatreSection       bool `json:"section_theatre"`
	SportSection         bool `json:"section_sport"`
	InternationalSection bool `json:"section_internationale"`
	EuropeanSection      bool `json:"section_europeenne"`
	AgriculturalLycee    bool `json:"lycee_agricole"`
	MilitaryLycee        bool `json:"lycee_militaire"`
	TradesLycee          bool `json:"lycee_des_metiers"`
	PostBac              bool `json:"post_bac"`
}

// Labels returns the display badge of every enabled feature, in a fixed order.
func (f Features) Labels() []string {
	all := []struct {
		on    bool
		label string
	}{
		{f.Catering, "🍽️ Restauration"},
		{f.Boarding, "🛏️ Internat"},
		{f.Inclusion, "♿ ULIS"},
		{f.Apprenticeship, "📚 Apprentissage"},
		{f.Segpa, "📖 SEGPA"},
		{f.ArtsSection, "🎨 Section Arts"},
		{f.CinemaSection, "🎬 Section Cinéma"},
		{f.TheatreSection, "🎭 Section Théâtre"},
		{f.SportSection, "⚽ Section Sport"},
		{f.InternationalSection, "🌍 Section Internationale"},
		{f.EuropeanSection, "🇪🇺 Section Européenne"},
		{f.AgriculturalLycee, "🌾 Lycée Agricole"},
		{f.MilitaryLycee, "🎖️ Lycée Militaire"},
		{f.TradesLycee, "🔧 Lycée des Métiers"},
		{f.PostBac, "🎓 Post-BAC"},
	}
	var out []string
	for _, x := range all {
		if x.on {
			out = append(out, x.label)
		}
	}
	return out
}

// Establishment is a directory record normalized across providers.
type Establishment struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	TypeLabel  string      `json:"type_label"`
	Status     string      `json:"status,omitempty"`
	State      string      `json:"state,omitempty"`
	Address    string      `json:"address"`
	PostalCode string      `json:"postal_code"`
	Commune    string      `json:"commune"`
	Phone      string      `json:"phone"`
	Email      string      `json:"email"`
	Web        string      `json:"web"`
	Students   *int        `json:"students"`
	Position   *Coordinate `json:"position"`
	Features   Features    `json:"features"`
	Source     string      `json:"source"`
}

// Label is the selector label "Name (Commune)".
func (e Establishment) Label() string {
	if e.Commune == "" {
		return e.Name
	}
	return e.Name + " (" + e.Commune + ")"
}
