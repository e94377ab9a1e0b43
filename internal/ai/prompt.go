package ai

import (
	"bytes"
	"encoding/json"
	"fmt"
)

const planPromptTemplate = `Du bist eine Koch-KI für eine Familie. Erstelle für die Woche ab %s einen abwechslungsreichen Plan (7 Tage), pro Tag GENAU EIN Essen: das Mittagessen. Das Mittagessen soll zusammenpassen (Hauptgericht + passende Beilage/Salat). Variiere die Küchenrichtungen. Vermeide Wiederholungen aus den letzten Wochen.
Werte Vorlieben aus: Bevorzuge Gerichte mit vielen Likes und meide Dislikes. Wenn nötig, wähle neutrale Optionen. Analysiere KOMMENTARE der Familie (Felder: week, date, mealName, items[], text, by, when): Leite pro Gericht (anhand der items[].name) eine klare Tendenz ab (positiv/neutral/negativ: z.B. schmeckt gut/nicht gut/zu oft). Bevorzuge Gerichte mit positiver Tendenz, meide negative – und beachte Hinweise zur Häufigkeit ("zu oft"). Nutze NUR aus folgender Gerichte-Liste (Name, Typ, Tags). Falls nicht genug passt, ersetze fehlende Positionen durch sinnvolle Platzhalter, die zur Richtung passen.
Wenn eine benutzerdefinierte Anweisung (Prompt) vorhanden ist, halte dich daran.

Antworte AUSSCHLIESSLICH mit gültigem JSON ohne extra Text. Schema:
{
  "weekStart": "YYYY-MM-DD",
  "days": [
    { "date": "YYYY-MM-DD", "theme": "string", "meals": [
      { "name": "Mittagessen", "items": [ {"name":"...","type":"Hauptgericht|Beilage|Salat"}, ... ] }
    ]}
  ],
  "comments": {},
  "source": "ai",
  "aiMessage": "Kurze, freundliche Begründung auf Deutsch mit Hinweis auf berücksichtigte Kommentare/Vorlieben"
}
`

const searchPromptTemplate = `Du bist eine Suche über Essensdaten (foods, plans/history, comments, prefs). Beantworte die Nutzerfrage präzise und gib strukturierte Ergebnisse zurück.
Antworte ausschließlich als JSON im Format:
{
  "answer": "kurzer Text",
  "foodMatches": [{"id":"","name":"","type":"","tags":[...],"score":0..1,"why":""}],
  "planMatches": [{"weekStart":"YYYY-MM-DD","date":"YYYY-MM-DD","mealName":"","items":[{"name":"","type":""}],"why":""}],
  "commentInsights": [{"date":"YYYY-MM-DD","mealName":"","text":"","by":"","sentiment":"positive|neutral|negative","why":""}]
}
Wenn keine Treffer, gib leere Arrays zurück.
`

type planContext struct {
	Foods        any    `json:"foods"`
	Profiles     any    `json:"profiles"`
	Prefs        any    `json:"prefs"`
	Recently     any    `json:"recently"`
	Comments     any    `json:"comments"`
	History      any    `json:"history"`
	CustomPrompt string `json:"customPrompt"`
}

type searchContext struct {
	Foods    any `json:"foods"`
	Profiles any `json:"profiles"`
	Prefs    any `json:"prefs"`
	History  any `json:"history"`
	Comments any `json:"comments"`
}

// BuildPlanPrompt собирает инструкцию для генерации недельного плана.
// Последняя строка промпта всегда содержит JSON с контекстом семьи.
func BuildPlanPrompt(input GenerateRequest) (string, error) {
	input = input.withDefaults()

	payload, err := marshalContext(planContext{
		Foods:        input.Foods,
		Profiles:     input.Profiles,
		Prefs:        input.Prefs,
		Recently:     input.Recently,
		Comments:     input.Comments,
		History:      input.History,
		CustomPrompt: input.CustomPrompt,
	})
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(planPromptTemplate, input.StartISO) + "\n" + payload, nil
}

// BuildSearchPrompt собирает инструкцию для поиска по данным о блюдах.
func BuildSearchPrompt(input SearchRequest) (string, error) {
	input = input.withDefaults()

	payload, err := marshalContext(searchContext{
		Foods:    input.Foods,
		Profiles: input.Profiles,
		Prefs:    input.Prefs,
		History:  input.History,
		Comments: input.Comments,
	})
	if err != nil {
		return "", err
	}

	return searchPromptTemplate + "\nNutzerfrage: " + input.Query + "\n" + payload, nil
}

func marshalContext(value interface{}) (string, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(value); err != nil {
		return "", fmt.Errorf("encode prompt context: %w", err)
	}

	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}
