package entity

// ComponentSpec описывает один проверяемый компонент внутри шага.
// Загружается из конфигурации и не изменяется.
type ComponentSpec struct {
	Name     string  // имя компонента, например "Antenna"
	Side     string  // сторона/режим, например "bottom"
	PassRate float64 // подсказка алгоритму: ожидаемая доля годных
}

// Строковые представления вердикта. display всегда выводится из numeric,
// других путей к этим значениям нет.
const (
	DisplayPass = "PASS"
	DisplayFail = "FAIL"
)

// ComponentResult — вердикт по одному компоненту за один захват.
// Числовая форма (0/1) первична и используется для хранения и агрегации,
// строковая форма служит только для отображения. Поля закрыты: единственный
// путь создания — NewComponentResult, поэтому формы не могут разойтись.
type ComponentResult struct {
	name    string
	numeric int
	display string
}

// NewComponentResult создаёт вердикт, вычисляя обе формы из одного факта.
func NewComponentResult(name string, passed bool) ComponentResult {
	r := ComponentResult{name: name, numeric: 0, display: DisplayFail}
	if passed {
		r.numeric = 1
		r.display = DisplayPass
	}
	return r
}

// Name возвращает имя компонента.
func (r ComponentResult) Name() string { return r.name }

// Numeric возвращает числовую форму вердикта: 1 — годен, 0 — брак.
func (r ComponentResult) Numeric() int { return r.numeric }

// Display возвращает строковую форму вердикта: PASS либо FAIL.
func (r ComponentResult) Display() string { return r.display }

// Passed сообщает, прошёл ли компонент проверку.
func (r ComponentResult) Passed() bool { return r.numeric == 1 }
