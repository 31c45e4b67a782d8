package domain

import "strings"

// freeEmailDomains lists consumer email providers whose domains never
// identify a company.
var freeEmailDomains = map[string]struct{}{
	"gmail.com":       {},
	"googlemail.com":  {},
	"yahoo.com":       {},
	"yahoo.co.uk":     {},
	"yahoo.co.in":     {},
	"yahoo.fr":        {},
	"yahoo.de":        {},
	"yahoo.es":        {},
	"yahoo.it":        {},
	"yahoo.ca":        {},
	"yahoo.com.br":    {},
	"yahoo.com.au":    {},
	"ymail.com":       {},
	"rocketmail.com":  {},
	"hotmail.com":     {},
	"hotmail.co.uk":   {},
	"hotmail.fr":      {},
	"hotmail.de":      {},
	"hotmail.es":      {},
	"hotmail.it":      {},
	"outlook.com":     {},
	"outlook.es":      {},
	"outlook.fr":      {},
	"outlook.de":      {},
	"live.com":        {},
	"live.co.uk":      {},
	"live.fr":         {},
	"live.de":         {},
	"msn.com":         {},
	"icloud.com":      {},
	"me.com":          {},
	"mac.com":         {},
	"aol.com":         {},
	"aim.com":         {},
	"protonmail.com":  {},
	"proton.me":       {},
	"pm.me":           {},
	"tutanota.com":    {},
	"tutanota.de":     {},
	"tuta.io":         {},
	"zoho.com":        {},
	"zohomail.com":    {},
	"mail.com":        {},
	"email.com":       {},
	"gmx.com":         {},
	"gmx.de":          {},
	"gmx.net":         {},
	"gmx.at":          {},
	"web.de":          {},
	"fastmail.com":    {},
	"fastmail.fm":     {},
	"hey.com":         {},
	"yandex.com":      {},
	"yandex.ru":       {},
	"mail.ru":         {},
	"inbox.ru":        {},
	"list.ru":         {},
	"bk.ru":           {},
	"qq.com":          {},
	"163.com":         {},
	"126.com":         {},
	"sina.com":        {},
	"naver.com":       {},
	"daum.net":        {},
	"rediffmail.com":  {},
	"comcast.net":     {},
	"verizon.net":     {},
	"att.net":         {},
	"sbcglobal.net":   {},
	"bellsouth.net":   {},
	"cox.net":         {},
	"charter.net":     {},
	"earthlink.net":   {},
	"btinternet.com":  {},
	"sky.com":         {},
	"virginmedia.com": {},
	"orange.fr":       {},
	"wanadoo.fr":      {},
	"free.fr":         {},
	"sfr.fr":          {},
	"laposte.net":     {},
	"t-online.de":     {},
	"freenet.de":      {},
	"libero.it":       {},
	"virgilio.it":     {},
	"tiscali.it":      {},
	"telenet.be":      {},
	"ziggo.nl":        {},
	"xs4all.nl":       {},
	"seznam.cz":       {},
	"wp.pl":           {},
	"o2.pl":           {},
	"onet.pl":         {},
	"interia.pl":      {},
	"uol.com.br":      {},
	"bol.com.br":      {},
	"terra.com.br":    {},
	"duck.com":        {},
	"example.com":     {},
}

// IsFreeEmailDomain reports whether the domain belongs to a consumer
// email provider.
func IsFreeEmailDomain(domain string) bool {
	_, ok := freeEmailDomains[strings.ToLower(strings.TrimSpace(domain))]
	return ok
}
