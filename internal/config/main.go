package config

type Config struct {
	DebugMode   bool
	Server      ServerConfig
	Upstream    UpstreamConfig
	Credentials CredentialsConfig
	Sessions    SessionConfig
	Redis       RedisConfig
	Monitoring  MonitoringConfig
}

func (c *Config) Validate() error {
	err := c.Upstream.Validate()
	if err != nil {
		return err
	}
	err = c.Credentials.Validate()
	if err != nil {
		return err
	}
	err = c.Sessions.Validate()
	if err != nil {
		return err
	}
	return c.Redis.Validate()
}
