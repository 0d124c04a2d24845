package config

type AppConfig struct {
	Server ServerConfig
	Game   GameConfig
	Events EventsConfig
	Log    LogConfig
}

func LoadApp() (AppConfig, error) {
	logCfg, err := LoadLog()
	if err != nil {
		return AppConfig{}, err
	}
	serverCfg, err := LoadServer()
	if err != nil {
		return AppConfig{}, err
	}
	gameCfg, err := LoadGame()
	if err != nil {
		return AppConfig{}, err
	}
	eventsCfg, err := LoadEvents()
	if err != nil {
		return AppConfig{}, err
	}
	return AppConfig{
		Server: serverCfg,
		Game:   gameCfg,
		Events: eventsCfg,
		Log:    logCfg,
	}, nil
}
