package router

import (
	"net/http"

	"walletprogram/internal/adapters/inbound/http/controllers"
)

type Dependencies struct {
	HealthController  *controllers.HealthController
	SwaggerController *controllers.SwaggerController
	WalletsController *controllers.WalletsController
}

func New(deps Dependencies) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", deps.HealthController.GetHealth)
	mux.HandleFunc("GET /swagger", deps.SwaggerController.RedirectToIndex)
	mux.HandleFunc("GET /swagger/openapi.yaml", deps.SwaggerController.GetOpenAPISpec)
	mux.HandleFunc("GET /swagger/", deps.SwaggerController.ServeUI)
	mux.HandleFunc("GET /v1/wallet-addresses/{owner}", deps.WalletsController.DeriveAddress)
	mux.HandleFunc("POST /v1/wallets", deps.WalletsController.InitializeWallet)
	mux.HandleFunc("GET /v1/wallets/{address}", deps.WalletsController.GetWallet)
	mux.HandleFunc("POST /v1/wallets/{address}/transfers", deps.WalletsController.TransferTokens)
	mux.HandleFunc("GET /v1/wallets/{address}/transfers", deps.WalletsController.ListTransfers)

	return mux
}
