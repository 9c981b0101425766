package throttle

// Blacklist is a static set of IPs known for malicious activity.
// Membership checks are read-only after construction, so no locking
// is needed.
type Blacklist struct {
	ips map[string]struct{}
}

// NewBlacklist builds a blacklist from the configured IP list.
func NewBlacklist(ips []string) *Blacklist {
	set := make(map[string]struct{}, len(ips))
	for _, ip := range ips {
		if ip != "" {
			set[ip] = struct{}{}
		}
	}
	return &Blacklist{ips: set}
}

// Contains reports whether ip is blacklisted.
func (b *Blacklist) Contains(ip string) bool {
	_, ok := b.ips[ip]
	return ok
}
