package metrics

// IncrementLoanCreated increments the loan creation counter
func (m *Metrics) IncrementLoanCreated() {
	m.safeExecute("IncrementLoanCreated", func() {
		m.LoanCreatedTotal.Inc()
	})
}

// IncrementStageChanged increments the stage transition counter
func (m *Metrics) IncrementStageChanged() {
	m.safeExecute("IncrementStageChanged", func() {
		m.StageChangedTotal.Inc()
	})
}

// AddTasksGenerated adds to the template-expansion counter
func (m *Metrics) AddTasksGenerated(n int) {
	m.safeExecute("AddTasksGenerated", func() {
		m.TasksGeneratedTotal.Add(float64(n))
	})
}

// IncrementLeadDeduped increments the duplicate-lead counter
func (m *Metrics) IncrementLeadDeduped() {
	m.safeExecute("IncrementLeadDeduped", func() {
		m.LeadsDedupedTotal.Inc()
	})
}

// IncrementLeadCreated increments the lead-created counter
func (m *Metrics) IncrementLeadCreated() {
	m.safeExecute("IncrementLeadCreated", func() {
		m.LeadsCreatedTotal.Inc()
	})
}

// SetLoansTotal sets the total loans gauge
func (m *Metrics) SetLoansTotal(count int64) {
	m.safeExecute("SetLoansTotal", func() {
		m.LoansTotal.Set(float64(count))
	})
}

// SetOpenTasksTotal sets the open tasks gauge
func (m *Metrics) SetOpenTasksTotal(count int64) {
	m.safeExecute("SetOpenTasksTotal", func() {
		m.OpenTasksTotal.Set(float64(count))
	})
}
