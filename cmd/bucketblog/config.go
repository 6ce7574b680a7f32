package main

import (
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/eringen/bucketblog"
	"github.com/eringen/bucketblog/objstore"
)

// setting is one persistent flag and the environment variable bound to it.
type setting struct {
	flag  string
	env   string
	def   interface{}
	usage string
}

var settings = []setting{
	{"s3-endpoint", "S3_ENDPOINT", "", "S3 endpoint, optionally with scheme"},
	{"s3-bucket", "S3_BUCKET", "blogs", "bucket holding the documents"},
	{"s3-region", "S3_REGION", "", "bucket region"},
	{"s3-access-key-id", "S3_ACCESS_KEY_ID", "", "S3 access key"},
	{"s3-secret-access-key", "S3_SECRET_ACCESS_KEY", "", "S3 secret key"},
	{"s3-use-ssl", "S3_USE_SSL", false, "use HTTPS when the endpoint has no scheme"},
	{"s3-prefix", "S3_PREFIX", "", "only serve documents under this prefix"},
	{"content-dir", "CONTENT_DIR", "", "serve documents from a local directory instead of S3"},
	{"cache-ignore", "CACHE_IGNORE", "", "semicolon-separated keys or * patterns to skip"},
	{"cache-ttl", "CACHE_TTL", "5m", "how long a synced view is served"},
	{"asset-base-url", "ASSET_BASE_URL", "", "base URL for embedded assets (defaults to the bucket URL)"},
	{"database-path", "DATABASE_PATH", "", "SQLite snapshot of the cache for warm restarts"},
	{"addr", "ADDR", ":3000", "listen address"},
	{"site-name", "SITE_NAME", "Blog", "site name for feeds"},
	{"site-url", "SITE_URL", "http://localhost:3000", "canonical site URL"},
	{"site-description", "SITE_DESCRIPTION", "", "site description for feeds"},
	{"static-dir", "STATIC_DIR", "public", "built front-end assets"},
	{"log-file", "LOG_FILE", "", "write logs to a rotated file"},
}

func bindFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	for _, s := range settings {
		switch def := s.def.(type) {
		case bool:
			flags.Bool(s.flag, def, s.usage)
		default:
			flags.String(s.flag, def.(string), s.usage)
		}
		_ = viper.BindPFlag(s.flag, flags.Lookup(s.flag))
		_ = viper.BindEnv(s.flag, s.env)
	}
}

func siteConfig() bucketblog.SiteConfig {
	return bucketblog.SiteConfig{
		Name:           viper.GetString("site-name"),
		URL:            viper.GetString("site-url"),
		Description:    viper.GetString("site-description"),
		Addr:           viper.GetString("addr"),
		StaticDir:      viper.GetString("static-dir"),
		LogFile:        viper.GetString("log-file"),
		CacheTTL:       viper.GetDuration("cache-ttl"),
		IgnorePatterns: viper.GetString("cache-ignore"),
		AssetBaseURL:   assetBaseURL(),
		DatabasePath:   viper.GetString("database-path"),
	}
}

// assetBaseURL falls back to the public URL of the bucket (and prefix).
func assetBaseURL() string {
	if u := viper.GetString("asset-base-url"); u != "" {
		return u
	}
	if viper.GetString("content-dir") != "" {
		return ""
	}
	base := objstore.ObjectURL(viper.GetString("s3-endpoint"), viper.GetString("s3-bucket"), viper.GetBool("s3-use-ssl"))
	if base == "" {
		return ""
	}
	if prefix := strings.Trim(viper.GetString("s3-prefix"), "/"); prefix != "" {
		base += "/" + prefix
	}
	return base
}

// describeStore names where documents come from, for logs and summaries.
func describeStore(store objstore.Store) string {
	if m, ok := store.(*objstore.MinioStore); ok {
		return "s3://" + m.Bucket()
	}
	return viper.GetString("content-dir")
}

// openStore returns the document store the settings select: a local
// directory when content-dir is set, the S3 bucket otherwise.
func openStore() (objstore.Store, error) {
	if dir := viper.GetString("content-dir"); dir != "" {
		return objstore.NewFilesystem(osfs.New(dir)), nil
	}
	return objstore.NewMinio(objstore.MinioConfig{
		Endpoint:  viper.GetString("s3-endpoint"),
		Bucket:    viper.GetString("s3-bucket"),
		Region:    viper.GetString("s3-region"),
		AccessKey: viper.GetString("s3-access-key-id"),
		SecretKey: viper.GetString("s3-secret-access-key"),
		UseSSL:    viper.GetBool("s3-use-ssl"),
		Prefix:    viper.GetString("s3-prefix"),
	})
}
