package task

import "errors"

var (
	ErrEmptyName        = errors.New("название задачи не может быть пустым")
	ErrNameTooLong      = errors.New("название задачи длиннее 32 символов")
	ErrInvalidPriority  = errors.New("неизвестный приоритет")
	ErrDuplicateSubTask = errors.New("повторяющийся id подзадачи")
	ErrNotFound         = errors.New("задача не найдена")
)
