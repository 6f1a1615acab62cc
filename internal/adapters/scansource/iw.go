package scansource

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/lcalzada-xor/wbands/internal/core/domain"
)

// commandRunner executes a command and returns its combined output.
type commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// IWBackend scans through the Linux iw utility. Scanning usually needs
// CAP_NET_ADMIN; without it iw reports "Operation not permitted".
type IWBackend struct {
	iface string
	run   commandRunner
}

// NewIWBackend drives iface, or the first managed interface when iface is empty.
func NewIWBackend(iface string) (*IWBackend, error) {
	if iface != "" && !domain.IsValidInterface(iface) {
		return nil, domain.ErrInvalidInterfaceName
	}
	return &IWBackend{iface: iface, run: execRunner}, nil
}

// Interfaces lists the wireless interfaces known to iw.
func (b *IWBackend) Interfaces(ctx context.Context) ([]domain.WirelessInterface, error) {
	out, err := b.run(ctx, "iw", "dev")
	if err != nil {
		return nil, classifyIWError(out, err)
	}
	return parseIWDev(out), nil
}

// Interface resolves the interface this backend drives.
func (b *IWBackend) Interface(ctx context.Context) (*domain.WirelessInterface, error) {
	ifaces, err := b.Interfaces(ctx)
	if err != nil {
		return nil, err
	}
	for i := range ifaces {
		if b.iface == "" && (ifaces[i].Type == "" || ifaces[i].Type == "managed") {
			return &ifaces[i], nil
		}
		if ifaces[i].Name == b.iface {
			return &ifaces[i], nil
		}
	}
	return nil, domain.ErrNoInterface
}

// Available reports whether the interface exists.
func (b *IWBackend) Available(ctx context.Context) bool {
	iface, err := b.Interface(ctx)
	if err != nil {
		log.Printf("[IW] Interface unavailable: %v", err)
		return false
	}
	log.Printf("[IW] Using %s", interfaceSummary(*iface))
	return true
}

// interfaceSummary renders an interface for logs, e.g.
// "wlan0 (managed, associated to HomeNet on 2.4 GHz)".
func interfaceSummary(w domain.WirelessInterface) string {
	mode := w.Type
	if mode == "" {
		mode = "managed"
	}
	if !w.Associated() {
		return fmt.Sprintf("%s (%s, not associated)", w.Name, mode)
	}
	return fmt.Sprintf("%s (%s, associated to %s on %s)", w.Name, mode, w.SSID, w.Band())
}

// Scan triggers a scan and annotates results with the survey noise floor.
func (b *IWBackend) Scan(ctx context.Context) ([]domain.Observation, error) {
	iface, err := b.Interface(ctx)
	if err != nil {
		return nil, err
	}

	out, err := b.run(ctx, "iw", "dev", iface.Name, "scan")
	if err != nil {
		return nil, classifyIWError(out, err)
	}
	results := parseScan(out)

	// Noise is best effort; missing survey data leaves it unknown.
	if survey, err := b.run(ctx, "iw", "dev", iface.Name, "survey", "dump"); err == nil {
		noise := parseSurvey(survey)
		for i := range results {
			results[i].obs.Noise = noise[results[i].freq]
		}
	}

	observations := make([]domain.Observation, len(results))
	for i, r := range results {
		observations[i] = r.obs
	}
	return observations, nil
}

// Connection reports the associated network from iw link.
func (b *IWBackend) Connection(ctx context.Context) (*domain.Observation, error) {
	iface, err := b.Interface(ctx)
	if err != nil {
		return nil, err
	}
	out, err := b.run(ctx, "iw", "dev", iface.Name, "link")
	if err != nil {
		return nil, classifyIWError(out, err)
	}
	link := parseLink(out)
	if link == nil {
		return nil, nil
	}
	if survey, err := b.run(ctx, "iw", "dev", iface.Name, "survey", "dump"); err == nil {
		link.obs.Noise = parseSurvey(survey)[link.freq]
	}
	return &link.obs, nil
}

// classifyIWError maps iw failures to domain errors.
func classifyIWError(out []byte, err error) error {
	msg := strings.TrimSpace(string(out))
	switch {
	case errors.Is(err, exec.ErrNotFound):
		return domain.NewScanFailedError("iw is not installed", err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case strings.Contains(msg, "Operation not permitted"):
		return fmt.Errorf("%w: %s", domain.ErrPermissionDenied, msg)
	case strings.Contains(msg, "No such device"), strings.Contains(msg, "Network is down"):
		return fmt.Errorf("%w: %s", domain.ErrNoInterface, msg)
	case strings.Contains(msg, "Device or resource busy"):
		return domain.NewScanFailedError("device busy", err)
	}
	if msg == "" {
		msg = err.Error()
	}
	return domain.NewScanFailedError(msg, err)
}

// scanResult keeps the frequency alongside the observation so noise can be
// matched from the survey.
type scanResult struct {
	freq int
	obs  domain.Observation
}

var (
	reBSS        = regexp.MustCompile(`^BSS ([0-9a-fA-F:]{17})`)
	reMHz        = regexp.MustCompile(`(\d+) MHz`)
	reConnected  = regexp.MustCompile(`^Connected to ([0-9a-fA-F:]{17})`)
	reRateNumber = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?`)
)

// parseScan parses `iw dev <if> scan` output.
func parseScan(out []byte) []scanResult {
	var (
		results []scanResult
		cur     *scanResult
		section string // RSN, WPA or empty
		privacy bool
		auth    []string
	)

	flush := func() {
		if cur == nil {
			return
		}
		cur.obs.Security = securityFromIEs(section != "" || len(auth) > 0, privacy, auth)
		if cur.obs.ChannelWidth == 0 {
			cur.obs.ChannelWidth = 20
		}
		if cur.obs.Channel == 0 {
			cur.obs.Channel = domain.ChannelFromFrequency(cur.freq)
		}
		results = append(results, *cur)
	}

	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		raw := sc.Text()
		line := strings.TrimSpace(raw)

		if m := reBSS.FindStringSubmatch(raw); m != nil {
			flush()
			cur = &scanResult{obs: domain.Observation{BSSID: domain.NormalizeBSSID(m[1])}}
			section, privacy, auth = "", false, nil
			continue
		}
		if cur == nil || line == "" {
			continue
		}

		key, value, _ := strings.Cut(line, ":")
		value = strings.TrimSpace(value)

		switch {
		case key == "freq":
			f, _ := strconv.ParseFloat(value, 64)
			cur.freq = int(f)
			cur.obs.Channel = domain.ChannelFromFrequency(cur.freq)
		case key == "signal":
			f, _ := strconv.ParseFloat(strings.TrimSuffix(value, " dBm"), 64)
			cur.obs.RSSI = int(f)
		case key == "SSID":
			cur.obs.SSID = unescapeSSID(value)
		case key == "beacon interval":
			cur.obs.BeaconInterval, _ = strconv.Atoi(strings.Fields(value + " 0")[0])
		case key == "capability":
			privacy = strings.Contains(value, "Privacy")
		case key == "Country":
			cur.obs.CountryCode = strings.Fields(value + " ")[0]
		case key == "Supported rates", key == "Extended supported rates":
			cur.obs.SupportedRates = append(cur.obs.SupportedRates, parseRates(value)...)
		case key == "RSN", key == "WPA":
			if section == "" || key == "RSN" {
				section = key
			}
		case strings.HasPrefix(line, "* Authentication suites"):
			auth = append(auth, strings.Fields(value)...)
		case strings.Contains(key, "channel width"):
			if m := reMHz.FindStringSubmatch(value); m != nil {
				if w, _ := strconv.Atoi(m[1]); w > cur.obs.ChannelWidth {
					cur.obs.ChannelWidth = w
				}
			} else if value == "any" && cur.obs.ChannelWidth < 40 {
				cur.obs.ChannelWidth = 40
			}
		}
	}
	flush()
	return results
}

func parseRates(value string) []float64 {
	var rates []float64
	for _, f := range strings.Fields(value) {
		if m := reRateNumber.FindString(f); m != "" {
			if r, err := strconv.ParseFloat(m, 64); err == nil {
				rates = append(rates, r)
			}
		}
	}
	return rates
}

// securityFromIEs builds a descriptor like "WPA2 Personal" from the
// capability bit and advertised AKM suites.
func securityFromIEs(hasRSN, privacy bool, auth []string) string {
	if !hasRSN {
		if privacy {
			return "WEP"
		}
		return "Open"
	}

	var psk, sae, eap, owe bool
	for _, a := range auth {
		switch a {
		case "PSK", "PSK/SHA-256", "FT/PSK":
			psk = true
		case "SAE", "FT/SAE":
			sae = true
		case "IEEE", "802.1X", "IEEE 802.1X", "FT/IEEE", "802.1X/SHA-256":
			eap = true
		case "OWE":
			owe = true
		}
	}

	switch {
	case owe && !psk && !sae && !eap:
		return "OWE"
	case eap:
		return "WPA2 Enterprise"
	case psk && sae:
		return "WPA2/WPA3 Personal"
	case sae:
		return "WPA3 Personal"
	case psk:
		return "WPA2 Personal"
	}
	return "WPA2"
}

// unescapeSSID decodes the \xNN escapes iw uses for non-printable bytes.
func unescapeSSID(s string) string {
	if !strings.Contains(s, `\x`) {
		return s
	}
	var buf bytes.Buffer
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+3 < len(s) && s[i+1] == 'x' {
			if v, err := strconv.ParseUint(s[i+2:i+4], 16, 8); err == nil {
				buf.WriteByte(byte(v))
				i += 3
				continue
			}
		}
		buf.WriteByte(s[i])
	}
	return buf.String()
}

// parseSurvey maps frequency (MHz) to noise floor (dBm).
func parseSurvey(out []byte) map[int]int {
	noise := make(map[int]int)
	freq := 0
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		key, value, ok := strings.Cut(strings.TrimSpace(sc.Text()), ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch key {
		case "frequency":
			if m := reMHz.FindStringSubmatch(value); m != nil {
				freq, _ = strconv.Atoi(m[1])
			}
		case "noise":
			if n, err := strconv.Atoi(strings.Fields(value + " ")[0]); err == nil && freq != 0 {
				noise[freq] = n
			}
		}
	}
	return noise
}

// parseLink parses `iw dev <if> link`. Returns nil when not connected.
func parseLink(out []byte) *scanResult {
	var link *scanResult
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if m := reConnected.FindStringSubmatch(line); m != nil {
			link = &scanResult{obs: domain.Observation{BSSID: domain.NormalizeBSSID(m[1])}}
			continue
		}
		if link == nil {
			continue
		}
		key, value, _ := strings.Cut(line, ":")
		value = strings.TrimSpace(value)
		switch key {
		case "SSID":
			link.obs.SSID = unescapeSSID(value)
		case "freq":
			f, _ := strconv.ParseFloat(value, 64)
			link.freq = int(f)
			link.obs.Channel = domain.ChannelFromFrequency(link.freq)
		case "signal":
			f, _ := strconv.ParseFloat(strings.TrimSuffix(value, " dBm"), 64)
			link.obs.RSSI = int(f)
		}
	}
	return link
}

// parseIWDev parses `iw dev` into interfaces.
func parseIWDev(out []byte) []domain.WirelessInterface {
	var (
		ifaces []domain.WirelessInterface
		cur    *domain.WirelessInterface
	)
	flush := func() {
		if cur != nil {
			ifaces = append(ifaces, *cur)
		}
	}

	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 2 {
			continue
		}
		switch fields[0] {
		case "Interface":
			flush()
			cur = &domain.WirelessInterface{Name: fields[1]}
		case "addr":
			if cur != nil {
				if w, err := domain.NewWirelessInterface(cur.Name, fields[1]); err == nil {
					cur.MAC = w.MAC
				}
			}
		case "type":
			if cur != nil {
				cur.Type = fields[1]
			}
		case "ssid":
			if cur != nil {
				cur.SSID = strings.Join(fields[1:], " ")
			}
		case "channel":
			if cur == nil {
				continue
			}
			cur.Channel, _ = strconv.Atoi(fields[1])
			// "channel 6 (2437 MHz)": prefer the frequency so 6 GHz numbering matches scans.
			if len(fields) > 2 {
				if f, err := strconv.Atoi(strings.TrimPrefix(fields[2], "(")); err == nil {
					if ch := domain.ChannelFromFrequency(f); ch != 0 {
						cur.Channel = ch
					}
				}
			}
		}
	}
	flush()
	return ifaces
}
