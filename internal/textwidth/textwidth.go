// Package textwidth measures display width in half-width character units
// using the Unicode East Asian Width property.
package textwidth

import (
	"strings"

	"golang.org/x/text/width"
)

// Ideal is the target width, in half-width units, of a Markdown line.
const Ideal = 68

const tabStop = 8

// Of returns the width of s as a plain-text editor shows it: fullwidth
// and wide runes count 2, everything else 1, and a tab advances to the
// next multiple of 8.
func Of(s string) int {
	w := 0
	for _, r := range s {
		if r == '\t' {
			w = (w + tabStop) / tabStop * tabStop
			continue
		}
		switch width.LookupRune(r).Kind() {
		case width.EastAsianFullwidth, width.EastAsianWide:
			w += 2
		default:
			w++
		}
	}
	return w
}

// Doubled lists symbols that are ambiguous or narrow by the Unicode
// table but are drawn full width by Japanese fonts.
const doubled = "−☐☑´¨―‐∥…‥‘’“”±×÷≠≦≧∞∴♂♀°′″℃§" +
	"☆★○●◎◇◆□■△▲▽▼※→←↑↓" +
	"∈∋⊆⊇⊂⊃∪∩∧∨⇒⇔∀∃∠⊥⌒∂∇≡≒≪≫√∽∝∵∫∬Å‰♯♭♪†‡¶◯" +
	"ΑΒΓΔΕΖΗΘΙΚΛΜΝΞΟΠΡΣΤΥΦΧΨΩαβγδεζηθικλμνξοπρστυφχψω" +
	"АБВГДЕЁЖЗИЙКЛМНОПРСТУФХЦЧШЩЪЫЬЭЮЯабвгдеёжзийклмнопрстуфхцчшщъыьэюя" +
	"─│┌┐┘└├┬┤┴┼━┃┏┓┛┗┣┳┫┻╋┠┯┨┷┿┝┰┥┸╂№℡∮∑∟⊿" +
	"⑴⑵⑶⑷⑸⑹⑺⑻⑼⑽⑾⑿⒀⒁⒂⒃⒄⒅⒆⒇①②③④⑤⑥⑦⑧⑨⑩⑪⑫⑬⑭⑮⑯⑰⑱⑲⑳" +
	"⒈⒉⒊⒋⒌⒍⒎⒏⒐⒑⒒⒓⒔⒕⒖⒗⒘⒙⒚⒛ⅰⅱⅲⅳⅴⅵⅶⅷⅸⅹⅺⅻⅠⅡⅢⅣⅤⅥⅦⅧⅨⅩⅪⅫ" +
	"⒜⒝⒞⒟⒠⒡⒢⒣⒤⒥⒦⒧⒨⒩⒪⒫⒬⒭⒮⒯⒰⒱⒲⒳⒴⒵ⓐⓑⓒⓓⓔⓕⓖⓗⓘⓙⓚⓛⓜⓝⓞⓟⓠⓡⓢⓣⓤⓥⓦⓧⓨⓩ" +
	"🄐🄑🄒🄓🄔🄕🄖🄗🄘🄙🄚🄛🄜🄝🄞🄟🄠🄡🄢🄣🄤🄥🄦🄧🄨🄩ⒶⒷⒸⒹⒺⒻⒼⒽⒾⒿⓀⓁⓂⓃⓄⓅⓆⓇⓈⓉⓊⓋⓌⓍⓎⓏ" +
	"㉑㉒㉓㉔㉕㉖㉗㉘㉙㉚㉛㉜㉝㉞㉟㊱㊲㊳㊴㊵㊶㊷㊸㊹㊺㊻㊼㊽㊾㊿🄋➀➁➂➃➄➅➆➇➈➉" +
	"㋐㋑㋒㋓㋔㋕㋖㋗㋘㋙㋚㋛㋜㋝㋞㋟㋠㋡㋢㋣㋤㋥㋦㋧㋨㋩㋪㋫㋬㋭㋮㋯㋰㋱㋲㋳㋴㋵㋶㋷㋸㋹㋺㋻㋼㋽㋾㊀㊁㊂㊃㊄㊅㊆㊇㊈㊉"

// Printed estimates the width s occupies on the page in a proportional
// Japanese font. It adds half a unit at every change of East Asian Width
// class, where fonts insert spacing between scripts.
func Printed(s string) float64 {
	w := 0.0
	prev := width.Kind(-1)
	for _, r := range s {
		if r == '\t' {
			w = float64((int(w) + tabStop) / tabStop * tabStop)
			continue
		}
		k := width.LookupRune(r).Kind()
		switch {
		case strings.ContainsRune(doubled, r):
			w += 2
		case k == width.EastAsianFullwidth || k == width.EastAsianWide:
			w += 2
		default:
			w++
		}
		if prev >= 0 && prev != k {
			w += 0.5
		}
		prev = k
	}
	return w
}
