package config

import "fmt"

// Validate 校验配置合法性
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("无效的服务端口: %d", c.Server.Port)
	}

	switch c.Database.Type {
	case "sqlite", "sqlite3", "mysql", "postgres", "postgresql":
	default:
		return fmt.Errorf("不支持的数据库类型: %s", c.Database.Type)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("数据库DSN不能为空")
	}

	if c.XHS.SignServiceURL == "" {
		return fmt.Errorf("签名服务地址不能为空")
	}
	return nil
}
