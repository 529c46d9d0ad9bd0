package core

// SectionID identifies one of the named sections of a briefing. Renderers
// key on the identifier instead of matching header prose.
type SectionID string

const (
	SectionOpening               SectionID = "abertura"
	SectionCoffee                SectionID = "cafe"
	SectionBrazil                SectionID = "brasil"
	SectionNationalPolitics      SectionID = "politica_nacional"
	SectionGlobal                SectionID = "global"
	SectionInternationalPolitics SectionID = "politica_internacional"
	SectionAgribusiness          SectionID = "agro"
	SectionSports                SectionID = "esportes"
	SectionRealEstate            SectionID = "imobiliario"
	SectionTechnology            SectionID = "tecnologia"
	SectionCulture               SectionID = "cultura"
	SectionHealth                SectionID = "saude"
	SectionAgenda                SectionID = "agenda"
	SectionSources               SectionID = "fontes"
)

// SectionSpec describes the markdown heading the model must emit for a section.
type SectionSpec struct {
	ID    SectionID `json:"id"`
	Title string    `json:"title"`
	Level int       `json:"level"` // 2 for "##", 3 for "###"
	Icon  string    `json:"icon"`
}

// Heading returns the exact markdown heading line.
func (s SectionSpec) Heading() string {
	prefix := "## "
	if s.Level == 3 {
		prefix = "### "
	}
	return prefix + s.Title
}

var sectionSpecs = []SectionSpec{
	{ID: SectionOpening, Title: "ABERTURA PERSONALIZADA", Level: 2, Icon: "✨"},
	{ID: SectionCoffee, Title: "MERCADO DE CAFÉ", Level: 2, Icon: "☕"},
	{ID: SectionBrazil, Title: "BRASIL HOJE", Level: 2, Icon: "📊"},
	{ID: SectionNationalPolitics, Title: "Política Nacional", Level: 3, Icon: "🏛️"},
	{ID: SectionGlobal, Title: "CENÁRIO GLOBAL", Level: 2, Icon: "🌍"},
	{ID: SectionInternationalPolitics, Title: "Política Internacional", Level: 3, Icon: "🌐"},
	{ID: SectionAgribusiness, Title: "AGRONEGÓCIO", Level: 2, Icon: "🌾"},
	{ID: SectionSports, Title: "ESPORTES", Level: 2, Icon: "⚽"},
	{ID: SectionRealEstate, Title: "MERCADO IMOBILIÁRIO", Level: 2, Icon: "🏠"},
	{ID: SectionTechnology, Title: "TECNOLOGIA E STARTUPS", Level: 2, Icon: "💻"},
	{ID: SectionCulture, Title: "CULTURA E ARTE", Level: 2, Icon: "🎭"},
	{ID: SectionHealth, Title: "SAÚDE E BEM-ESTAR", Level: 2, Icon: "🏥"},
	{ID: SectionAgenda, Title: "AGENDA DA SEMANA", Level: 2, Icon: "📅"},
	{ID: SectionSources, Title: "FONTES", Level: 2, Icon: "📚"},
}

// Sections returns the named sections in briefing order.
func Sections() []SectionSpec {
	out := make([]SectionSpec, len(sectionSpecs))
	copy(out, sectionSpecs)
	return out
}

// SectionByID looks up a section by identifier.
func SectionByID(id SectionID) (SectionSpec, bool) {
	for _, s := range sectionSpecs {
		if s.ID == id {
			return s, true
		}
	}
	return SectionSpec{}, false
}
