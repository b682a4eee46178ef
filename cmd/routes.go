package main

import (
	"net/http"

	"github.com/bmizerany/pat"
	"github.com/justinas/alice"
)

func (app *application) routes() http.Handler {
	standardMiddleware := alice.New(app.recoverPanic, app.logRequest, secureHeaders, makeResponseJSON)
	authMiddleware := standardMiddleware.Append(app.requireBuyer)

	mux := pat.New()

	// Payments
	mux.Post("/checkout", authMiddleware.ThenFunc(app.paymentHandler.Checkout))
	mux.Post("/verify-payment", authMiddleware.ThenFunc(app.paymentHandler.VerifyPayment))

	// Orders
	mux.Get("/me/orders", authMiddleware.ThenFunc(app.orderHandler.MyOrders))

	// Downloads: the token in the path is the credential, no auth header
	mux.Get("/download/:token/song/:songId", standardMiddleware.ThenFunc(app.downloadHandler.DownloadSong))
	mux.Get("/download/:token/album/:albumId", standardMiddleware.ThenFunc(app.downloadHandler.DownloadAlbum))

	// Media
	mux.Post("/media/signed-url", standardMiddleware.ThenFunc(app.mediaHandler.SignedURL))

	mux.Get("/health", standardMiddleware.ThenFunc(app.healthCheck))

	return mux
}

func (app *application) healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte(`{"status":"ok"}`))
}
