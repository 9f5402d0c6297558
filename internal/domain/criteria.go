package domain

import "time"

// SearchCriteria описывает фильтры и пагинацию поиска заказов.
// Мутируется только scope-фильтром до передачи в репозиторий поиска;
// после диспатча критерии не изменяются.
type SearchCriteria struct {
	Number        string
	StoreIDs      []string
	EmployeeID    string
	CustomerID    string
	ResponseGroup string
	StartDate     *time.Time
	EndDate       *time.Time
	Skip          int
	Take          int
}

// SearchResult — страница результатов поиска заказов.
type SearchResult struct {
	Orders     []CustomerOrder
	TotalCount int
}
