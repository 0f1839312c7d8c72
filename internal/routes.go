package internal

import (
	"net/http"
	"scoutd/internal/controllers"
	"scoutd/internal/providers"
	"scoutd/internal/structures"
)

func InitRoutes(matchController *controllers.MatchScoutController, pitController *controllers.PitScoutController, conf *structures.Config) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider(conf.WebServer.BasePath)

	routers.Post("/matchscout/{team}", http.HandlerFunc(matchController.Submit))
	routers.Get("/matchscout", http.HandlerFunc(matchController.List))
	routers.Get("/matchscout/export/csv", http.HandlerFunc(matchController.ExportCSV))
	routers.Get("/matchscout/match/{matchId}/status", http.HandlerFunc(matchController.MatchStatus))
	routers.Get("/matchscout/{team}/{match}/button", http.HandlerFunc(matchController.ButtonStatus))
	routers.Post("/matchscout/{team}/{match}/button", http.HandlerFunc(matchController.ToggleButton))

	routers.Post("/submit-pitscout/{team}", http.HandlerFunc(pitController.Submit))
	routers.Get("/pitscout", http.HandlerFunc(pitController.List))
	routers.Get("/pitscout/export/csv", http.HandlerFunc(pitController.ExportCSV))
	routers.Get("/all-scout-instances", http.HandlerFunc(pitController.AllInstances))
	return routers
}
