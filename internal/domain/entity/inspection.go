package entity

// InspectionResult хранит итог работы алгоритма над усреднённым кадром.
type InspectionResult struct {
	Results   []ComponentResult // вердикт по каждому компоненту в порядке спецификаций
	Regions   []Region          // области, отмеченные алгоритмом
	Annotated Frame             // кадр с разметкой
}
