package version

var (
	Version     = "dev"
	ProjectName = "geo-service"
	Namespace   = "GEO"
)
