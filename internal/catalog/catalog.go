// Package catalog provides the static, read-only event template catalog keyed by
// venue system category.
package catalog

import (
	"fmt"
	"slices"

	"github.com/BTreeMap/ShowDirector/internal/models"
	"github.com/BTreeMap/ShowDirector/internal/scenario"
)

// Catalog maps each system category to its ordered template pool.
type Catalog map[models.SystemCategory][]models.EventTemplate

var categories = []models.SystemCategory{
	models.SystemSound,
	models.SystemLighting,
	models.SystemPower,
	models.SystemSecurity,
	models.SystemCrowd,
}

// Categories returns every known system category in fixed order.
func Categories() []models.SystemCategory {
	return slices.Clone(categories)
}

// Pool returns a copy of the template pool for category, or nil if unknown.
func (c Catalog) Pool(category models.SystemCategory) []models.EventTemplate {
	return slices.Clone(c[category])
}

// Systems returns the known categories that have at least one template, in fixed order.
func (c Catalog) Systems() []models.SystemCategory {
	out := make([]models.SystemCategory, 0, len(categories))
	for _, cat := range categories {
		if len(c[cat]) > 0 {
			out = append(out, cat)
		}
	}
	return out
}

// Validate reports the first category with a missing or empty pool.
func (c Catalog) Validate() error {
	for _, cat := range categories {
		if len(c[cat]) == 0 {
			return fmt.Errorf("%w: %s", models.ErrEmptyTemplatePool, cat)
		}
	}
	return nil
}

// Default returns the built-in catalog. Each call returns a fresh copy.
func Default() Catalog {
	out := make(Catalog, len(defaultTemplates))
	for cat, pool := range defaultTemplates {
		out[cat] = slices.Clone(pool)
	}
	return out
}

func opts(options ...models.EventOption) []models.EventOption { return options }

func opt(label string, stress float64, score int) models.EventOption {
	return models.EventOption{Label: label, StressDelta: stress, ScoreDelta: score}
}

var defaultTemplates = map[models.SystemCategory][]models.EventTemplate{
	models.SystemSound: {
		{
			Title:       "Acople en monitores",
			Description: "Un pitido agudo recorre el escenario y el cantante se tapa los oídos.",
			Options:     opts(opt("Bajar ganancia del monitor", -6, 40), opt("Cambiar micrófono", -2, 20), opt("Ignorar", 10, -30)),
		},
		{
			Title:       "Micrófono inalámbrico sin señal",
			Description: "El micrófono principal pierde la señal en mitad del discurso.",
			Options:     opts(opt("Pasar al micrófono de respaldo", -5, 35), opt("Cambiar baterías", -1, 15), opt("Que hable más alto", 8, -25)),
		},
		{
			Title:            "Línea de bajos saturada",
			Description:      "Los subwoofers distorsionan y el público del foso se queja.",
			Options:          opts(opt("Recortar frecuencias bajas", -4, 30), opt("Reiniciar procesador", 2, 10)),
			AllowedScenarios: []string{scenario.StadiumTour, scenario.MusicFestival},
		},
		{
			Title:            "Consola empapada",
			Description:      "La lluvia se cuela bajo la carpa de la mesa de mezclas.",
			Options:          opts(opt("Cubrir con lona", -3, 25), opt("Evacuar la mesa", 6, 5)),
			AllowedScenarios: []string{scenario.StormFestival},
		},
	},
	models.SystemLighting: {
		{
			Title:       "Cabeza móvil bloqueada",
			Description: "Un foco robótico se queda fijo apuntando al público.",
			Options:     opts(opt("Apagar el aparato", -3, 25), opt("Reprogramar la escena", -1, 30), opt("Dejarlo así", 7, -20)),
		},
		{
			Title:       "Cue de luces adelantado",
			Description: "El operador dispara el final antes de tiempo y el escenario queda a oscuras.",
			Options:     opts(opt("Volver al cue anterior", -4, 35), opt("Improvisar con seguidores", 0, 20)),
		},
		{
			Title:            "Humo excesivo",
			Description:      "La máquina de niebla llena el recinto y los detectores están a punto de saltar.",
			Options:          opts(opt("Cortar la máquina de humo", -5, 30), opt("Abrir ventilación", -2, 20), opt("Seguir con el efecto", 12, -40)),
			AllowedScenarios: []string{scenario.CorporateGala, scenario.WeddingReception},
		},
	},
	models.SystemPower: {
		{
			Title:       "Breaker disparado",
			Description: "Se cae la toma del backline y los amplificadores se apagan.",
			Options:     opts(opt("Rearmar el breaker", -4, 30), opt("Repartir la carga", -2, 35), opt("Esperar", 9, -30)),
		},
		{
			Title:            "Generador sin combustible",
			Description:      "El generador principal tose y la tensión empieza a caer.",
			Options:          opts(opt("Cambiar al generador de respaldo", -6, 45), opt("Recargar en caliente", 4, 20)),
			AllowedScenarios: []string{scenario.MusicFestival, scenario.StadiumTour},
		},
		{
			Title:            "Apagón parcial",
			Description:      "Medio recinto se queda sin luz en plena tormenta eléctrica.",
			Options:          opts(opt("Activar iluminación de emergencia", -6, 40), opt("Anunciar una pausa", 2, 10)),
			AllowedScenarios: []string{scenario.BlackoutFinale, scenario.StormFestival},
		},
	},
	models.SystemSecurity: {
		{
			Title:       "Acceso backstage forzado",
			Description: "Un fan ha conseguido colarse en la zona de camerinos.",
			Options:     opts(opt("Enviar seguridad", -4, 30), opt("Hablar con él", -1, 15), opt("Ignorar", 8, -25)),
		},
		{
			Title:       "Pulseras falsificadas",
			Description: "En la puerta aparecen decenas de pulseras VIP falsas.",
			Options:     opts(opt("Revisar con lector", -3, 30), opt("Dejar pasar", 6, -15)),
		},
		{
			Title:            "Valla de seguridad cediendo",
			Description:      "La primera fila empuja y la valla frontal empieza a doblarse.",
			Options:          opts(opt("Detener el show", -8, 20), opt("Reforzar con personal", -4, 35)),
			AllowedScenarios: []string{scenario.StadiumTour},
		},
	},
	models.SystemCrowd: {
		{
			Title:       "Cola interminable en la barra",
			Description: "El público se impacienta y empieza a abuchear al personal.",
			Options:     opts(opt("Abrir otra barra", -3, 30), opt("Regalar agua", -2, 20)),
		},
		{
			Title:       "Invitado indispuesto",
			Description: "Alguien se ha desmayado cerca del escenario.",
			Options:     opts(opt("Llamar al equipo médico", -5, 40), opt("Parar la música", 1, 15)),
		},
		{
			Title:            "Estampida en la salida",
			Description:      "Un rumor de evacuación hace correr al público hacia las salidas.",
			Options:          opts(opt("Mensaje por megafonía", -6, 40), opt("Abrir salidas laterales", -3, 30), opt("No hacer nada", 14, -50)),
			AllowedScenarios: []string{scenario.StormFestival, scenario.BlackoutFinale},
		},
	},
}
