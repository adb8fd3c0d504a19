package discover

import "github.com/miekg/dns"

// DNSServers enumerates the system's configured resolver addresses in
// their configured order. An unreadable or malformed configuration yields
// an empty list, never an error.
func (d *Discoverer) DNSServers() []string {
	config, err := dns.ClientConfigFromFile(d.resolvConf)
	if err != nil {
		return nil
	}
	return config.Servers
}
