package entity

import "gopkg.in/yaml.v2"

// ExampleConfig renders a commented-free deploy.yml with every key set.
func ExampleConfig() (string, error) {
	example := FileConfig{
		Hosts:          []string{"deploy@web.example.org", "deploy@web2.example.org:2222"},
		User:           "deploy",
		IdentityFile:   "~/.ssh/id_ed25519",
		Bastion:        "jump.example.org",
		Port:           DefaultSSHPort,
		Dir:            "/srv/webeid",
		ConnectTimeout: "10s",
	}
	example.Env.Set("SPRING_PROFILES_ACTIVE", "prod")
	example.Env.Set("COMPOSE_PROJECT_NAME", "webeid")

	data, err := yaml.Marshal(example)
	if err != nil {
		return "", err
	}
	return "---\n" + string(data), nil
}
