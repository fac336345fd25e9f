package domain

import "strings"

type Account struct {
	// Index is the zero-based position in the private key list.
	Index      int
	Address    string
	PrivateKey string `json:"-"`
}

// Label is the 1-based account number used in logs.
func (a Account) Label() int {
	return a.Index + 1
}

func NormalizePrivateKey(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "0x") || strings.HasPrefix(trimmed, "0X") {
		return "0x" + trimmed[2:]
	}

	return "0x" + trimmed
}

type Binding struct {
	Account Account
	Proxy   string
}

// BindProxies pairs every account with the proxy at the same index. Proxy
// usage requires at least as many proxies as accounts.
func BindProxies(accounts []Account, proxies []string, useProxy bool) ([]Binding, error) {
	if len(accounts) == 0 {
		return nil, ErrNoAccounts
	}
	if useProxy && len(proxies) < len(accounts) {
		return nil, &ProxyShortageError{Accounts: len(accounts), Proxies: len(proxies)}
	}

	bindings := make([]Binding, 0, len(accounts))
	for i, account := range accounts {
		binding := Binding{Account: account}
		if useProxy {
			binding.Proxy = proxies[i]
		}
		bindings = append(bindings, binding)
	}

	return bindings, nil
}
