package mysql

import (
	"net"
	"strconv"

	gomysql "github.com/go-sql-driver/mysql"

	"github.com/koustreak/sqlgate/internal/config"
)

// driverConfig translates a resolved configuration into the driver's config.
// The connect timeout bounds dialing and the handshake of one attempt.
func driverConfig(cfg config.Config) *gomysql.Config {
	mc := gomysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	mc.DBName = cfg.Database
	mc.Timeout = cfg.Timeout()
	mc.ParseTime = true
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc
}

// buildDSN renders cfg as a DSN, for logging with the password masked.
func buildDSN(cfg config.Config) string {
	masked := cfg
	if masked.Password != "" {
		masked.Password = "****"
	}
	return driverConfig(masked).FormatDSN()
}
