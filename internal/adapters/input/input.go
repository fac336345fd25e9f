// Package input reads the plain-text account and proxy lists.
package input

import (
	"bufio"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/bnema/nova-runner/internal/adapters/chain"
	"github.com/bnema/nova-runner/internal/domain"
)

// ReadLines returns the non-empty trimmed lines of path.
func ReadLines(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() {
		_ = file.Close()
	}()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return lines, nil
}

// LoadAccounts reads one private key per line and derives each wallet address.
func LoadAccounts(path string) ([]domain.Account, error) {
	lines, err := ReadLines(path)
	if err != nil {
		return nil, err
	}

	accounts := make([]domain.Account, 0, len(lines))
	for i, line := range lines {
		key := domain.NormalizePrivateKey(line)
		address, err := chain.AddressFromPrivateKey(key)
		if err != nil {
			return nil, fmt.Errorf("account %d: %w", i+1, err)
		}
		accounts = append(accounts, domain.Account{
			Index:      i,
			Address:    address.Hex(),
			PrivateKey: key,
		})
	}

	return accounts, nil
}

// LoadProxies reads the proxy list. Without proxy mode a missing file is
// not an error. In proxy mode every entry must be a full proxy URL.
func LoadProxies(path string, useProxy bool) ([]string, error) {
	proxies, err := ReadLines(path)
	if err != nil {
		if !useProxy && errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	if useProxy {
		for i, proxy := range proxies {
			if err := ValidateProxy(proxy); err != nil {
				return nil, fmt.Errorf("proxy %d: %w", i+1, err)
			}
		}
	}

	return proxies, nil
}

// ValidateProxy rejects entries such as "host:port" that carry no scheme;
// they would otherwise be dropped silently and the account sent direct.
func ValidateProxy(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid proxy url %q: %w", raw, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("invalid proxy url %q: want scheme://[user:pass@]host:port", raw)
	}

	return nil
}
