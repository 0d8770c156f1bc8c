package markdown

import (
	"regexp"
	"strings"
)

// demonstrative prefixes of the こ/そ/あ/ど series.
const (
	ko  = `(?:こ|そ|あ|ど)`
	kou = `(?:こう|そう|ああ|どう)`
	one = `[1１一]`
	nth = `[1-9１-９一二三四五六七八九]`
)

// conjunctions open a new line when they stand alone before a comma at the
// start of a line.
var conjunctions = []string{
	`しかし[，、]だからといって`,

	ko + `うなると`, ko + `うなれば`, ko + `のうえ`, ko + `の上`, ko + `のうえで`,
	ko + `の上で`, ko + `のかわり`, ko + `の代わり`, ko + `のくせ`, ko + `のことから`,
	ko + `のため`, ko + `のためには`, ko + `のなかでも`, ko + `の中でも`,
	ko + `のような中`, ko + `のように`, ko + `のようにして`, ko + `の反面`,
	ko + `の場合`, ko + `の後`, ko + `の結果`, ko + `の際`, ko + `れから`, ko + `れで`,
	ko + `れでこそ`, ko + `れでは`, ko + `れでも`, ko + `れどころか`, ko + `れなのに`,
	ko + `れなら`, ko + `れに`, ko + `れにしても`, ko + `れには`,
	ko + `れにもかかわらず`, ko + `れによって`, ko + `れに加えて`, ko + `れに対して`,
	ko + `ればかりか`, ko + `ればかりでなく`, ko + `れゆえ`, ko + `れ故`, ko + `れゆえに`,
	ko + `れ故に`, ko + `れより`, ko + `れよりは`, ko + `れよりも`, ko + `れらのことから`,
	ko + `れらを踏まえて`, ko + `んな中`, `(?:こ|そ|あそ|ど)こで`,

	kou + `いえば`, kou + `したところ`, kou + `したら`, kou + `して`, kou + `してみると`,
	kou + `しなければ`, kou + `することで`, kou + `すると`, kou + `すれば`,
	kou + `だからといって`, kou + `だとしても`, kou + `だとすると`, kou + `だとすれば`,
	kou + `であるにもかかわらず`, kou + `でないならば`, kou + `ではあるが`,
	kou + `ではなく`, kou + `はいうものの`,

	nth + `つ目は`, nth + `点目は`, one + `つは`, `もう` + one + `つは`,
	`[2-9２-９二三四五六七八九]つには`, one + `点は`, `もう` + one + `点は`,
	`第` + nth + `に`,

	`あと`, `後`, `あるいは`, `いうならば`, `言うならば`, `いうなれば`, `言うなれば`,
	`いずれにしても`, `いずれにしろ`, `いずれにせよ`, `いってみれば`, `言ってみれば`,
	`いわば`, `いわんや`, `おまけに`, `および`, `及び`, `かえって`, `却って`, `反って`,
	`かくして`, `斯くして`, `かつ`, `且つ`, `が`, `けだし`, `蓋し`, `けど`, `けれど`,
	`けれども`, `さて`, `さもないと`, `さらに`, `更に`, `さらにいえば`, `しかし`,
	`しかしながら`, `しかも`, `しかるに`, `然るに`, `したがって`, `従って`,
	`してみると`, `じつは`, `実は`, `すなわち`, `すると`, `そして`, `そもそも`,
	`それとも`, `それはさておき`, `それはそうと`, `たしかに`, `確かに`, `ただ`,
	`ただし`, `たとえば`, `例えば`, `だから`, `だからこそ`, `だからといって`, `だが`,
	`だけど`, `だって`, `だとしたら`, `だとしても`, `だとすると`, `だとすれば`,
	`ちなみに`, `因みに`, `つぎに`, `次に`, `つまり`, `つまるところ`, `詰まる所`,
	`ですが`, `では`, `でも`, `というか`, `というのは`, `というのも`, `というより`,
	`というよりも`, `ときに`, `時に`, `ところが`, `ところで`, `となると`, `となれば`,
	`とにかく`, `とにもかくにも`, `とはいうものの`, `とはいえ`, `とはいっても`,
	`ともあれ`, `ともかく`, `とりわけ`, `取分け`, `どころか`, `どちらにしても`,
	`どちらにせよ`, `どっちにしても`, `どっちにせよ`, `どっち道`, `どっちみち`,
	`どのみち`, `どの道`, `なお`, `尚`, `なおさら`, `尚更`, `なかでも`, `中でも`,
	`なぜかというと`, `何故かというと`, `なぜかといえば`, `何故かといえば`,
	`なぜなら`, `何故なら`, `なぜならば`, `何故ならば`, `なにしろ`, `何しろ`,
	`なにせ`, `何せ`, `なので`, `なのに`, `ならば`, `ならびに`, `並びに`, `なるほど`,
	`成程`, `にもかかわらず`, `のに`, `はじめに`, `初めに`, `始めに`, `おわりに`,
	`終わりに`, `終りに`, `ひいては`, `延いては`, `まして`, `ましてや`, `まず`, `先ず`,
	`また`, `又`, `または`, `又は`, `むしろ`, `むろん`, `無論`, `もし`, `もしかしたら`,
	`もしくは`, `若しくは`, `もしも`, `もちろん`, `勿論`, `もっとも`, `尤も`, `ものの`,
	`ゆえに`, `故に`, `よって`, `因って`,

	`一方`, `他方`, `一方で`, `他方で`, `一方では`, `他方では`, `一般的`, `一般的に`,
	`事実`, `他には`, `他にも`, `以上`, `以上から`, `以上のように`, `以上を踏まえて`,
	`仮に`, `仮にも`, `具体的には`, `加えて`, `反対に`, `反面`, `同じく`, `同じように`,
	`同時に`, `同様に`, `実のところ`, `実を言うと`, `実を言えば`, `実際`, `実際に`,
	`対して`, `当たり前ですが`, `当然ですが`, `換言すると`, `普通`, `最初に`, `最後に`,
	`次いで`, `殊に`, `特に`, `現に`, `百歩譲って`, `百歩譲って仮に`, `結局`,
	`結果として`, `結果的に`, `続いて`, `裏を返せば`, `裏返せば`, `要するに`, `要は`,
	`言い換えると`, `逆に`, `逆に言えば`, `通常`,
}

var conjunctionLine = regexp.MustCompile(`^(?:` + strings.Join(conjunctions, "|") + `)[，、]$`)

// isConjunction reports whether line is exactly a conjunction and a comma.
func isConjunction(line string) bool {
	return conjunctionLine.MatchString(line)
}
