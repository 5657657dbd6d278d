package api

import (
	"context"
	"log/slog"

	"github.com/hazyhaar/cercaclasse/pkg/kit"
	"github.com/hazyhaar/cercaclasse/pkg/search"
)

// Shared request/response types used by both HTTP and MCP transports.

type searchReq struct {
	Query string
}

type healthResponse struct {
	Status  string `json:"status"`
	Loaded  bool   `json:"loaded"`
	Records int    `json:"records"`
}

func searchEndpoint(engine *search.Engine, logger *slog.Logger) kit.Endpoint {
	ep := func(ctx context.Context, request any) (any, error) {
		req := request.(*searchReq)
		return engine.Search(ctx, req.Query)
	}
	return kit.Chain(kit.WithRequestIDs(), kit.Logging(logger, "search"))(ep)
}

func healthEndpoint(engine *search.Engine) kit.Endpoint {
	return func(_ context.Context, _ any) (any, error) {
		store := engine.Store()
		return healthResponse{
			Status:  "ok",
			Loaded:  store.Loaded(),
			Records: store.Len(),
		}, nil
	}
}
