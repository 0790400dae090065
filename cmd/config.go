package cmd

type Config struct {
	HTTPPort                string
	DBHost                  string
	DBPort                  string
	DBUser                  string
	DBPassword              string
	DBName                  string
	DBSslMode               string
	RabbitMQURL             string
	RedisAddr               string
	RoutingBaseURL          string
	GeofenceToleranceMeters string
}
