package rest

const (
	// api
	RouteApiV1 = "/api/v1"

	// owner files
	RouteFiles = RouteApiV1 + "/files"
	RouteFile  = RouteFiles + "/:file_id"

	// public shares
	RouteShares        = RouteApiV1 + "/shares"
	RouteShare         = RouteShares + "/:share_token"
	RouteShareDownload = RouteShare + "/download"

	// ops
	RouteHealth  = RouteApiV1 + "/healthz"
	RouteReady   = RouteApiV1 + "/readyz"
	RouteMetrics = RouteApiV1 + "/metrics"
)

// ShareDownloadPath is the download route for a concrete token.
func ShareDownloadPath(token string) string {
	return RouteShares + "/" + token + "/download"
}
