package resolve

import "strings"

// Lexicon bundles every vocabulary the resolver matches against. It is
// assembled once at startup (base sets plus externally supplied noise
// words) and passed by value into the stages that need it; nothing
// mutates it after construction.
type Lexicon struct {
	// Brands is ordered: brand detection returns the first entry found
	// as a substring, so position in this slice is a contract.
	Brands []string

	// Noise is press/politics/generic-news vocabulary. A candidate
	// whose brand or model contains any of these is rejected.
	Noise map[string]struct{}

	// ModelStop holds brand-like tokens the model rules latch onto
	// (line names, romanized brands). Never valid models.
	ModelStop map[string]struct{}

	// ModelDeny lists known false positives: platform and retailer
	// names that superficially look like model codes.
	ModelDeny map[string]struct{}

	// GenericModels are marketing suffixes that identify a tier, not a
	// product (PRO, MAX, ...).
	GenericModels map[string]struct{}

	// TokenStop rejects generic words matched by the token rules.
	TokenStop map[string]struct{}

	// BeautyHints trigger the shade/line fallback when no model code
	// was found in a listing title.
	BeautyHints []string

	// BeautyLines are cushion/line names accepted as models by the
	// beauty fallback.
	BeautyLines []string

	// ProductHints and ProductSuffixes mark product-referring text for
	// the free-text fallback and the likelihood adjustment.
	ProductHints    []string
	ProductSuffixes []string

	// PersonNoiseHints mark person/politics/news text; they pull the
	// product likelihood down.
	PersonNoiseHints []string

	// Stopwords are dropped during free-text token candidate selection.
	Stopwords map[string]struct{}

	// ClothingBlock excludes apparel terms from the free-text fallback.
	ClothingBlock []string
}

// DefaultLexicon returns the built-in vocabulary.
func DefaultLexicon() Lexicon {
	return Lexicon{
		Brands: []string{
			"삼성", "LG", "애플", "샤오미", "다이슨", "로보락", "쿠쿠", "쿠첸",
			"브리타", "필립스", "테팔", "헤라", "라네즈", "설화수", "닥터지",
		},
		Noise: toSet(
			"뉴스", "속보", "정치", "대선", "국회", "정부", "일보", "신문",
			"기자", "공개", "발표",
		),
		ModelStop: toSet(
			"BESPOKE", "CUCKOO", "SAMSUNG", "LG", "APPLE", "XIAOMI",
			"DYSON", "ROBOROCK",
		),
		ModelDeny: toSet(
			"29CM", "WCONCEPT", "MUSINSA", "OLIVEYOUNG", "NAVER", "COUPANG",
		),
		GenericModels: toSet("PRO", "MAX", "ULTRA", "AIR"),
		TokenStop:     toSet("news", "live"),
		BeautyHints: []string{
			"쿠션", "파운데이션", "립", "틴트", "선크림", "에센스", "앰플",
			"세럼", "크림", "마스크팩",
		},
		BeautyLines: []string{"블랙쿠션", "BLACKCUSHION", "리플렉션", "GLOW"},
		ProductHints: []string{
			"청소기", "보조배터리", "이어폰", "헤드셋", "키보드", "마우스",
			"모니터", "선풍기", "가습기", "공기청정기", "비타민", "영양제",
			"안마기", "믹서기", "커피머신", "정수기", "제습기", "블랙박스",
			"스피커", "태블릿", "노트북", "스탠드", "조명", "매트", "베개",
			"칫솔", "치약", "샴푸", "클렌저", "세제", "건조기",
		},
		ProductSuffixes: []string{
			"청소기", "배터리", "이어폰", "헤드셋", "키보드", "마우스",
			"모니터", "선풍기", "가습기", "공기청정기", "영양제", "안마기",
			"믹서기", "커피머신", "정수기", "제습기", "블랙박스", "스피커",
			"태블릿", "노트북", "스탠드", "조명", "매트", "베개", "칫솔",
			"치약", "샴푸", "클렌저", "세제", "건조기", "거치대", "케이스",
			"쿠커", "프라이팬", "냄비", "에어프라이어", "로봇청소기",
		},
		PersonNoiseHints: []string{
			"기자", "선수", "감독", "배우", "가수", "대통령", "장관", "국회",
			"총리", "날씨", "증시", "환율", "국민의힘", "민주당", "속보",
			"정치", "대선", "여야",
		},
		Stopwords: toSet(
			"오늘", "최근", "이슈", "화제", "공개", "출시", "논란", "영상",
			"사진", "방송", "네이버", "유튜브", "인스타그램", "대한", "관련",
			"기자", "뉴스", "속보", "단독", "있다", "없다", "정리", "후기",
			"추천", "구매", "가격", "비교", "내일", "이번", "실시간",
			"라이브", "공식", "발표", "현장", "인터뷰",
		),
		ClothingBlock: []string{
			"의류", "코트", "패딩", "니트", "셔츠", "바지", "치마", "원피스",
			"자켓", "점퍼", "신발", "스니커즈", "가디건", "후드", "맨투맨",
			"청바지", "슬랙스", "구두", "부츠", "샌들",
		},
	}
}

// WithNoise returns a copy of the lexicon with extra noise words merged
// in. The receiver is left untouched; this is the only supported way to
// extend the vocabulary and it happens once, before processing begins.
func (l Lexicon) WithNoise(words []string) Lexicon {
	if len(words) == 0 {
		return l
	}
	merged := make(map[string]struct{}, len(l.Noise)+len(words))
	for w := range l.Noise {
		merged[w] = struct{}{}
	}
	for _, w := range words {
		if w != "" {
			merged[w] = struct{}{}
		}
	}
	l.Noise = merged
	return l
}

func (l Lexicon) containsNoise(s string) bool {
	for w := range l.Noise {
		if w != "" && strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func toSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
