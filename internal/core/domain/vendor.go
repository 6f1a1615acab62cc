package domain

import (
	"net"
	"strings"
)

// VendorRandomized is reported for locally administered BSSIDs.
const VendorRandomized = "Randomized"

// commonOUIs maps the first three octets of well-known access point vendors.
var commonOUIs = map[string]string{
	"00:03:93": "Apple", "00:0D:93": "Apple", "A4:5E:60": "Apple", "F0:D1:A9": "Apple",
	"00:1B:63": "Apple", "04:0C:CE": "Apple", "10:DD:B1": "Apple", "8C:85:90": "Apple",
	"BC:D0:74": "Apple",
	"00:1E:8C": "Netgear", "A0:21:B7": "Netgear", "E0:91:F5": "Netgear", "20:E5:2A": "Netgear",
	"C0:3F:0E": "Netgear",
	"F8:1A:67": "TP-Link", "50:C7:BF": "TP-Link", "A4:2B:8C": "TP-Link", "E8:DE:27": "TP-Link",
	"90:F6:52": "TP-Link", "14:CF:92": "TP-Link",
	"00:18:E7": "Linksys", "68:7F:74": "Linksys", "C0:56:27": "Linksys",
	"20:AA:4B": "ASUS", "04:D9:F5": "ASUS", "F8:32:E4": "ASUS", "08:60:6E": "ASUS", "1C:87:2C": "ASUS",
	"00:15:E9": "D-Link", "00:26:5A": "D-Link", "B8:A3:86": "D-Link",
	"00:00:0C": "Cisco", "00:01:42": "Cisco", "00:01:43": "Cisco", "00:01:63": "Cisco", "00:01:64": "Cisco",
	"00:27:22": "Ubiquiti", "04:18:D6": "Ubiquiti", "24:A4:3C": "Ubiquiti", "68:72:51": "Ubiquiti",
	"F0:9F:C2": "Ubiquiti",
	"00:11:50": "Belkin", "08:86:3B": "Belkin", "94:44:52": "Belkin",
	"3C:5A:B4": "Google", "F4:F5:D8": "Google", "00:1A:11": "Google",
	"84:D6:D0": "Amazon", "00:71:47": "Amazon", "68:37:E9": "Amazon",
	"00:12:FB": "Samsung", "00:15:99": "Samsung", "00:16:32": "Samsung", "5C:0A:5B": "Samsung",
	"60:6B:FF": "Samsung",
	"00:18:82": "Huawei", "00:25:9E": "Huawei", "84:A8:E4": "Huawei",
	"34:CE:00": "Xiaomi", "64:09:80": "Xiaomi", "78:11:DC": "Xiaomi",
	"00:0B:86": "Aruba", "00:1A:1E": "Aruba", "24:DE:C6": "Aruba",
}

// LookupVendor returns the vendor for a BSSID, VendorRandomized for locally
// administered addresses, or "" when unknown or unparsable.
func LookupVendor(bssid string) string {
	hw, err := net.ParseMAC(NormalizeBSSID(bssid))
	if err != nil || len(hw) < 3 {
		return ""
	}
	oui := strings.ToUpper(hw[:3].String())
	if v, ok := commonOUIs[oui]; ok {
		return v
	}
	// Bit 1 of the first octet marks a locally administered address.
	if hw[0]&0x02 != 0 {
		return VendorRandomized
	}
	return ""
}
