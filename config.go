package main

var ServiceConfig = DefaultConfig()

type Config struct {
	Listen      string         `json:"listen"`
	AdminSecret string         `json:"admin_secret"`
	Database    DatabaseConfig `json:"database"`
	Redis       RedisConfig    `json:"redis"`
	Jwt         JwtConfig      `json:"jwt"`
	Nonce       NonceConfig    `json:"nonce"`
	Features    FeatureConfig  `json:"features"`
	Theme       ThemeConfig    `json:"theme"`
}

type DatabaseConfig struct {
	Host               string `json:"host"`
	Port               int    `json:"port"`
	User               string `json:"username"`
	Password           string `json:"password"`
	Database           string `json:"database"`
	MaxIdleConnections int    `json:"max_idle_connections"`
	MaxOpenConnections int    `json:"max_open_connections"`
}

// RedisConfig with an empty Host runs the service without Redis: toggle locks
// fall back to an in-process lock set and search is unavailable.
type RedisConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

type JwtConfig struct {
	Secret  string `json:"secret"`
	Timeout int    `json:"timeout"`
	BindIp  bool   `json:"bind_ip"`
}

type NonceConfig struct {
	Secret   string `json:"secret"`
	Lifetime int    `json:"lifetime"`
}

type FeatureConfig struct {
	Favorites     bool `json:"favorites"`
	Subscriptions bool `json:"subscriptions"`
	ThreadReplies bool `json:"thread_replies"`
	UseWpEditor   bool `json:"use_wp_editor"`
	ShowLeadTopic bool `json:"show_lead_topic"`
}

type ThemeConfig struct {
	Version   string `json:"version"`
	SiteUrl   string `json:"site_url"`
	ForumRoot string `json:"forum_root"`
}

func DefaultConfig() Config {
	return Config{
		Listen: ":3002",
		Database: DatabaseConfig{
			Host:               "localhost",
			Port:               5432,
			User:               "bbp",
			Database:           "bbp",
			MaxIdleConnections: 10,
			MaxOpenConnections: 50,
		},
		Redis: RedisConfig{
			Host: "localhost",
			Port: 6379,
		},
		Jwt: JwtConfig{
			Timeout: 86400,
			BindIp:  true,
		},
		Nonce: NonceConfig{
			Lifetime: 86400,
		},
		Features: FeatureConfig{
			Favorites:     true,
			Subscriptions: true,
			ThreadReplies: false,
			UseWpEditor:   true,
			ShowLeadTopic: false,
		},
		Theme: ThemeConfig{
			Version:   "2.5.14",
			SiteUrl:   "http://localhost",
			ForumRoot: "forums",
		},
	}
}
