package dnswalk

import (
	"bufio"
	"os"
	"strings"
)

// DefaultRootServers are the IANA root server IPv4 addresses, used when no
// hints file is supplied.
var DefaultRootServers = []string{
	"198.41.0.4",     // a.root-servers.net
	"199.9.14.201",   // b.root-servers.net
	"192.33.4.12",    // c.root-servers.net
	"199.7.91.13",    // d.root-servers.net
	"192.203.230.10", // e.root-servers.net
	"192.5.5.241",    // f.root-servers.net
	"192.112.36.4",   // g.root-servers.net
	"198.97.190.53",  // h.root-servers.net
	"192.36.148.17",  // i.root-servers.net
	"192.58.128.30",  // j.root-servers.net
	"193.0.14.129",   // k.root-servers.net
	"199.7.83.42",    // l.root-servers.net
	"202.12.27.33",   // m.root-servers.net
}

// LoadRootServers reads a hints file holding one root server IPv4 address
// per line and returns the addresses in file order; blank lines are
// skipped. An empty path is not an error: it returns DefaultRootServers.
func LoadRootServers(path string) ([]string, error) {
	if path == "" {
		return DefaultRootServers, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var addrs []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			addrs = append(addrs, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(addrs) == 0 {
		return nil, errNoRootServersInHints
	}
	return addrs, nil
}
