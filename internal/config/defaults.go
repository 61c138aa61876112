package config

// DefaultPolicies is the shipped policy set, used when the config file
// declares none. Alert-only by default; kill/quarantine stay opt-in.
func DefaultPolicies() []PolicyConfig {
	return []PolicyConfig{
		{
			Name:        "critical-threats",
			Description: "Alert on critical security threats",
			PriorityMin: "critical",
			RulePatterns: []string{
				"Ghost EDR - Reverse Shell*",
				"Ghost EDR - Crypto Miner*",
				"Ghost EDR - Container Escape*",
				"Ghost EDR - Nsenter*",
				"Ghost EDR - Kernel Module*",
				"Ghost EDR - Netcat Reverse Shell*",
				"Ghost EDR - Download and Execute*",
				"Ghost EDR - Process Injection*",
			},
			Action:          "alert",
			CooldownSeconds: 0,
		},
		{
			Name:        "high-threats",
			Description: "Alert on high priority threats",
			PriorityMin: "error",
			RulePatterns: []string{
				"Ghost EDR - Mining Pool Connection*",
				"Ghost EDR - Mount in Privileged*",
				"Ghost EDR - Shell Spawned from Web*",
				"Ghost EDR - Docker Socket Access*",
			},
			Action:          "alert",
			CooldownSeconds: 30,
		},
		{
			Name:            "suspicious-activity",
			Description:     "Alert on suspicious activity",
			PriorityMin:     "warning",
			Action:          "alert",
			CooldownSeconds: 60,
		},
	}
}

// DefaultExcludedContainers never receive enforcement actions; the
// monitor's own sensor container is on the list so the enforcer cannot
// blind itself.
func DefaultExcludedContainers() []string {
	return []string{"ghost-mole"}
}
