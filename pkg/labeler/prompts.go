package labeler

import "fmt"

// ImprovedNamePrompt asks for a polished version of a raw catalog name.
func ImprovedNamePrompt(processName string) string {
	return fmt.Sprintf("Give me an improved name for the process: %s, return only the name with a maximum of 3 words", processName)
}

// DepartmentsPrompt asks which departments take part in a process. The
// answer is expected as a comma-separated list; parse it with SplitList.
func DepartmentsPrompt(processName string) string {
	return fmt.Sprintf("Given the process name '%s', list 4-6 relevant department names that would be involved in this process.\n"+
		"Return only the department names separated by commas, no additional text.\n"+
		"Example format: Sales, Operations, Customer Service, Legal", processName)
}

// CategoryPrompt asks for a product category fitting a process.
func CategoryPrompt(processName string) string {
	return fmt.Sprintf("Given the process '%s', suggest a product category name.\nReturn only the category name, no additional text.", processName)
}
