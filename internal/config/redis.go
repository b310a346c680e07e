package config

import "fmt"

type RedisConfig struct {
	Type       string
	Addresses  []string
	IsSentinel bool
	Password   RedactedString
	MasterName string
	DBIndex    int
}

const DBTypeRedis string = "redis"
const DBTypeRedisMock string = "redis-mock"

func (c *RedisConfig) Validate() error {
	switch c.Type {
	case DBTypeRedis:
		if len(c.Addresses) == 0 {
			return fmt.Errorf("at least one redis address has to be provided")
		}
		if c.IsSentinel && c.MasterName == "" {
			return fmt.Errorf("a master name has to be provided when redis sentinel is used")
		}
		return nil
	case DBTypeRedisMock:
		return nil
	default:
		return fmt.Errorf("unrecognized persistence type %v", c.Type)
	}
}
